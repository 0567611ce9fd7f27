package models

import (
	"time"
)

// RewardTarget maps a referral-count threshold to a reward label,
// managed by admins.
type RewardTarget struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReferralCount int       `gorm:"not null" json:"referral_count"`
	Reward        string    `gorm:"size:255;not null" json:"reward"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for RewardTarget model
func (RewardTarget) TableName() string {
	return "reward_targets"
}
