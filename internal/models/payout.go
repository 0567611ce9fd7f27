package models

import (
	"time"
)

// Payout status values
const (
	PayoutStatusPending    = "pending"
	PayoutStatusCompleted  = "completed"
	PayoutStatusFailed     = "failed"
	PayoutStatusProcessing = "processing"
)

// Payout methods
const (
	PayoutMethodBankTransfer = "Bank Transfer"
)

// Payout is the system of record for completed money movement. The
// wallet engine inserts one row per deposited redemption and never
// updates it afterwards. No foreign key to users: payouts outlive the
// accounts they paid.
type Payout struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	PayoutID      string    `gorm:"size:50;uniqueIndex;not null" json:"payout_id"`
	Amount        int64     `gorm:"not null" json:"amount"`
	Method        string    `gorm:"size:50;not null" json:"method"`
	Status        string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	BankDetails   string    `gorm:"type:text;not null" json:"bank_details"`
	TransactionID *string   `gorm:"size:100" json:"transaction_id,omitempty"`
	Date          time.Time `gorm:"autoCreateTime" json:"date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for Payout model
func (Payout) TableName() string {
	return "payouts"
}
