package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"referral-wallet/internal/models"
	"referral-wallet/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.BankDetails{},
		&models.RedeemHistory{},
		&models.Payout{},
		&models.RewardTarget{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	// The shared in-memory DB persists across tests; start clean.
	db.Exec("DELETE FROM payouts")
	db.Exec("DELETE FROM redeem_history")
	db.Exec("DELETE FROM user_bank_details")
	db.Exec("DELETE FROM reward_targets")
	db.Exec("DELETE FROM users")

	return db
}

func newTestWalletService(db *gorm.DB) *WalletService {
	repo := repository.NewRepository(db)
	bank := NewBankDetailsService(repo)
	return NewWalletService(repo, bank, 250, 250)
}

var testUserSeq int

func createTestUser(t *testing.T, db *gorm.DB, referralCode string, referralCount int, walletBalance int64) *models.User {
	t.Helper()

	testUserSeq++
	user := models.User{
		Name:          "Test User " + referralCode,
		Email:         fmt.Sprintf("%s@example.com", referralCode),
		MobileNumber:  fmt.Sprintf("9%09d", testUserSeq),
		PasswordHash:  "irrelevant",
		ReferralCode:  referralCode,
		ReferralCount: referralCount,
		WalletBalance: walletBalance,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

func validBankInput(amount int64) BankDetailsInput {
	input := BankDetailsInput{
		BankName:          "State Bank of India",
		AccountNumber:     "123456789012",
		IfscCode:          "SBIN0001234",
		AccountHolderName: "Test Holder",
	}
	if amount > 0 {
		input.RedeemAmount = &amount
	}
	return input
}
