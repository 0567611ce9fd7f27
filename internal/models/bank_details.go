package models

import (
	"time"
)

// Redeem status values shared by BankDetails and RedeemHistory
const (
	RedeemStatusProcessing = "processing"
	RedeemStatusDeposited  = "deposited"
)

// BankDetails holds one bank profile per user. RedeemAmount and
// RedeemStatus track only the most recent redemption request; the full
// trail lives in redeem_history.
type BankDetails struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User              User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	AccountNumber     string    `gorm:"size:50;not null" json:"account_number"`
	IfscCode          string    `gorm:"size:20;not null" json:"ifsc_code"`
	BankName          string    `gorm:"size:255;not null" json:"bank_name"`
	AccountHolderName string    `gorm:"size:255;not null" json:"account_holder_name"`
	RedeemAmount      int64     `gorm:"not null;default:0" json:"redeem_amount"`
	RedeemStatus      string    `gorm:"size:20;not null;default:'processing'" json:"redeem_status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for BankDetails model
func (BankDetails) TableName() string {
	return "user_bank_details"
}
