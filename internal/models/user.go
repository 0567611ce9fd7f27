package models

import (
	"time"
)

// Payment status values for User.PaymentStatus
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
)

// User represents a registered user with referral and wallet state
type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"size:255;not null" json:"name"`
	Email        string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	MobileNumber string  `gorm:"size:15;uniqueIndex;not null" json:"mobile_number"`
	Address      *string `gorm:"size:255" json:"address,omitempty"`
	Gender       *string `gorm:"size:10" json:"gender,omitempty"`
	PasswordHash string  `gorm:"size:255;not null" json:"-"`

	ReferralCode string `gorm:"size:50;uniqueIndex;not null" json:"referral_code"`
	// ReferredByCode holds the referrer's code, set once at registration.
	// It is a code reference, not a foreign key to users.id.
	ReferredByCode *string `gorm:"size:50;index" json:"referred_by_code,omitempty"`

	ReferralCount int `gorm:"not null;default:0" json:"referral_count"`
	// ReferralCountAtLastRedeem is stamped on each successful redemption
	// request. It is reporting-only; eligibility is derived from the
	// redeem history ledger, never from this snapshot.
	ReferralCountAtLastRedeem int `gorm:"not null;default:0" json:"referral_count_at_last_redeem"`

	// WalletBalance is a running credit balance in whole rupees. It is
	// credited by referral accrual and debited by redemption requests;
	// it must never be recomputed as referral_count * reward once any
	// redemption exists.
	WalletBalance int64 `gorm:"not null;default:0" json:"wallet_balance"`

	Reward        *string `gorm:"size:255" json:"reward,omitempty"`
	PaymentStatus string  `gorm:"size:10;not null;default:'PENDING'" json:"payment_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
