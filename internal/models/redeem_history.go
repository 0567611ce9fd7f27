package models

import (
	"time"
)

// RedeemHistory is the append-only redemption ledger. Rows are created
// in processing state and mutated exactly once, on the transition to
// deposited. They are never deleted, and deliberately carry no foreign
// key to users so the ledger survives user deletion.
type RedeemHistory struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	RedeemAmount int64  `gorm:"not null" json:"redeem_amount"`
	Status       string `gorm:"size:20;not null;default:'processing'" json:"status"`
	// BankDetails is a JSON snapshot of the bank fields as submitted
	// with the request, so later profile edits do not rewrite history.
	BankDetails string     `gorm:"size:500" json:"bank_details"`
	RedeemedAt  time.Time  `gorm:"autoCreateTime;index" json:"redeemed_at"`
	DepositedAt *time.Time `json:"deposited_at,omitempty"`
}

// TableName specifies the table name for RedeemHistory model
func (RedeemHistory) TableName() string {
	return "redeem_history"
}

// BankSnapshot is the parsed form of RedeemHistory.BankDetails
type BankSnapshot struct {
	BankName          string `json:"bankName"`
	AccountNumber     string `json:"accountNumber"`
	IfscCode          string `json:"ifscCode"`
	AccountHolderName string `json:"accountHolderName"`
}
