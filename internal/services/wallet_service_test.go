package services

import (
	"context"
	"errors"
	"testing"

	"referral-wallet/internal/models"
)

func TestComputeEligibility(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "ELIG1", 10, 2500)

	elig, err := service.ComputeEligibility(ctx, user.ID)
	if err != nil {
		t.Fatalf("ComputeEligibility failed: %v", err)
	}
	if elig.TotalEarned != 2500 {
		t.Errorf("expected total earned 2500, got %d", elig.TotalEarned)
	}
	if elig.TotalAlreadyRedeemed != 0 {
		t.Errorf("expected total redeemed 0, got %d", elig.TotalAlreadyRedeemed)
	}
	if elig.MaxRedeemable != 2500 {
		t.Errorf("expected max redeemable 2500, got %d", elig.MaxRedeemable)
	}

	if _, err := service.ComputeEligibility(ctx, 99999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound for unknown user, got %v", err)
	}
}

func TestComputeEligibilityClampsAtZero(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	// History exceeding lifetime earnings must not yield a negative
	// ceiling.
	user := createTestUser(t, db, "CLAMP1", 2, 0)
	db.Create(&models.RedeemHistory{UserID: user.ID, RedeemAmount: 3000, Status: models.RedeemStatusDeposited})

	elig, err := service.ComputeEligibility(ctx, user.ID)
	if err != nil {
		t.Fatalf("ComputeEligibility failed: %v", err)
	}
	if elig.MaxRedeemable != 0 {
		t.Errorf("expected clamped max redeemable 0, got %d", elig.MaxRedeemable)
	}
}

func TestRequestRedemptionMinimumAmount(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "MIN1", 10, 2500)

	_, err := service.RequestRedemption(ctx, user.ID, validBankInput(100))
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Message != "Minimum redeem amount is ₹250" {
		t.Errorf("unexpected message: %s", validationErr.Message)
	}

	// Nothing must have been persisted.
	var historyCount int64
	db.Model(&models.RedeemHistory{}).Count(&historyCount)
	if historyCount != 0 {
		t.Errorf("expected no history entries, got %d", historyCount)
	}
}

func TestRedemptionCeilingSequence(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	// referralCount=10 earns a lifetime ceiling of 2500.
	user := createTestUser(t, db, "SEQ1", 10, 2500)

	if _, err := service.RequestRedemption(ctx, user.ID, validBankInput(1000)); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}
	if _, err := service.RequestRedemption(ctx, user.ID, validBankInput(1000)); err != nil {
		t.Fatalf("second redemption failed: %v", err)
	}

	// 2000 already committed against the ceiling; 600 exceeds the 500
	// remaining even though both earlier entries are still processing.
	_, err := service.RequestRedemption(ctx, user.ID, validBankInput(600))
	var eligErr *EligibilityError
	if !errors.As(err, &eligErr) {
		t.Fatalf("expected EligibilityError, got %v", err)
	}
	if eligErr.MaxRedeemable != 500 {
		t.Errorf("expected max redeemable 500, got %d", eligErr.MaxRedeemable)
	}
	if eligErr.TotalEarned != 2500 {
		t.Errorf("expected total earned 2500, got %d", eligErr.TotalEarned)
	}
	if eligErr.TotalAlreadyRedeemed != 2000 {
		t.Errorf("expected total redeemed 2000, got %d", eligErr.TotalAlreadyRedeemed)
	}

	// A request within the remainder still succeeds.
	if _, err := service.RequestRedemption(ctx, user.ID, validBankInput(500)); err != nil {
		t.Fatalf("final redemption within ceiling failed: %v", err)
	}
}

func TestEligibilityDecreasesByRequestedAmount(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "DEC1", 10, 2500)

	before, err := service.ComputeEligibility(ctx, user.ID)
	if err != nil {
		t.Fatalf("ComputeEligibility failed: %v", err)
	}

	if _, err := service.RequestRedemption(ctx, user.ID, validBankInput(750)); err != nil {
		t.Fatalf("RequestRedemption failed: %v", err)
	}

	after, err := service.ComputeEligibility(ctx, user.ID)
	if err != nil {
		t.Fatalf("ComputeEligibility failed: %v", err)
	}
	if after.MaxRedeemable != before.MaxRedeemable-750 {
		t.Errorf("expected max redeemable %d, got %d", before.MaxRedeemable-750, after.MaxRedeemable)
	}
}

func TestWalletDebitFlooredAtZero(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	// Ceiling allows 2500 but the running balance holds only 300.
	user := createTestUser(t, db, "FLOOR1", 10, 300)

	if _, err := service.RequestRedemption(ctx, user.ID, validBankInput(1000)); err != nil {
		t.Fatalf("RequestRedemption failed: %v", err)
	}

	var refreshed models.User
	if err := db.First(&refreshed, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if refreshed.WalletBalance != 0 {
		t.Errorf("expected wallet balance floored at 0, got %d", refreshed.WalletBalance)
	}
	if refreshed.ReferralCountAtLastRedeem != 10 {
		t.Errorf("expected referral snapshot 10, got %d", refreshed.ReferralCountAtLastRedeem)
	}
}

func TestPureBankDetailUpdateHasNoRedeemEffects(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "PURE1", 10, 2500)

	details, err := service.RequestRedemption(ctx, user.ID, validBankInput(0))
	if err != nil {
		t.Fatalf("RequestRedemption without amount failed: %v", err)
	}
	if details.RedeemAmount != 0 {
		t.Errorf("expected redeem amount 0, got %d", details.RedeemAmount)
	}

	var historyCount int64
	db.Model(&models.RedeemHistory{}).Where("user_id = ?", user.ID).Count(&historyCount)
	if historyCount != 0 {
		t.Errorf("expected no history entries, got %d", historyCount)
	}

	var refreshed models.User
	db.First(&refreshed, user.ID)
	if refreshed.WalletBalance != 2500 {
		t.Errorf("expected wallet balance untouched at 2500, got %d", refreshed.WalletBalance)
	}
}

func TestSnapshotSurvivesLaterProfileEdits(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "SNAP1", 10, 2500)

	original := validBankInput(500)
	if _, err := service.RequestRedemption(ctx, user.ID, original); err != nil {
		t.Fatalf("RequestRedemption failed: %v", err)
	}

	// Edit the profile afterwards with different bank fields and no
	// redeem amount.
	edited := BankDetailsInput{
		BankName:          "HDFC Bank",
		AccountNumber:     "999888777666",
		IfscCode:          "HDFC0004321",
		AccountHolderName: "Renamed Holder",
	}
	if _, err := service.RequestRedemption(ctx, user.ID, edited); err != nil {
		t.Fatalf("profile edit failed: %v", err)
	}

	history, err := service.GetRedeemHistory(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetRedeemHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}

	snapshot := history[0].BankDetails
	if snapshot == nil {
		t.Fatal("expected parsed bank snapshot, got nil")
	}
	if snapshot.BankName != original.BankName {
		t.Errorf("snapshot bank name: expected %q, got %q", original.BankName, snapshot.BankName)
	}
	if snapshot.AccountNumber != original.AccountNumber {
		t.Errorf("snapshot account number: expected %q, got %q", original.AccountNumber, snapshot.AccountNumber)
	}
	if snapshot.IfscCode != original.IfscCode {
		t.Errorf("snapshot IFSC: expected %q, got %q", original.IfscCode, snapshot.IfscCode)
	}
	if snapshot.AccountHolderName != original.AccountHolderName {
		t.Errorf("snapshot holder name: expected %q, got %q", original.AccountHolderName, snapshot.AccountHolderName)
	}
}

func TestMarkDepositedCreatesSinglePayout(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "DEP1", 10, 2500)

	if _, err := service.RequestRedemption(ctx, user.ID, validBankInput(1000)); err != nil {
		t.Fatalf("RequestRedemption failed: %v", err)
	}

	details, err := service.MarkDeposited(ctx, user.ID)
	if err != nil {
		t.Fatalf("MarkDeposited failed: %v", err)
	}
	if details.RedeemStatus != models.RedeemStatusDeposited {
		t.Errorf("expected bank profile status deposited, got %s", details.RedeemStatus)
	}

	history, err := service.GetRedeemHistory(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetRedeemHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].Status != models.RedeemStatusDeposited {
		t.Errorf("expected ledger status deposited, got %s", history[0].Status)
	}
	if history[0].DepositedAt == nil {
		t.Error("expected deposited_at to be set")
	}

	var payouts []models.Payout
	db.Where("user_id = ?", user.ID).Find(&payouts)
	if len(payouts) != 1 {
		t.Fatalf("expected 1 payout, got %d", len(payouts))
	}
	payout := payouts[0]
	if payout.Amount != 1000 {
		t.Errorf("expected payout amount 1000, got %d", payout.Amount)
	}
	if payout.Method != models.PayoutMethodBankTransfer {
		t.Errorf("expected method Bank Transfer, got %s", payout.Method)
	}
	if payout.Status != models.PayoutStatusCompleted {
		t.Errorf("expected status completed, got %s", payout.Status)
	}
	if payout.TransactionID == nil {
		t.Error("expected transaction ID to be set")
	}

	// Repeat with no new processing entry: ledger and payouts stay
	// untouched.
	if _, err := service.MarkDeposited(ctx, user.ID); err != nil {
		t.Fatalf("second MarkDeposited failed: %v", err)
	}
	var payoutCount int64
	db.Model(&models.Payout{}).Where("user_id = ?", user.ID).Count(&payoutCount)
	if payoutCount != 1 {
		t.Errorf("expected payout count to stay 1, got %d", payoutCount)
	}
}

func TestMarkDepositedWithoutProfile(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "DEP2", 0, 0)

	if _, err := service.MarkDeposited(ctx, user.ID); !errors.Is(err, ErrBankDetailsNotFound) {
		t.Errorf("expected ErrBankDetailsNotFound, got %v", err)
	}
}

func TestMarkDepositedPicksLatestProcessingEntry(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "DEP3", 20, 5000)

	if _, err := service.RequestRedemption(ctx, user.ID, validBankInput(1000)); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}
	if _, err := service.RequestRedemption(ctx, user.ID, validBankInput(2000)); err != nil {
		t.Fatalf("second redemption failed: %v", err)
	}

	if _, err := service.MarkDeposited(ctx, user.ID); err != nil {
		t.Fatalf("MarkDeposited failed: %v", err)
	}

	history, err := service.GetRedeemHistory(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetRedeemHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	// Oldest first: the earlier 1000 entry stays processing, the later
	// 2000 entry is the one deposited.
	if history[0].Status != models.RedeemStatusProcessing {
		t.Errorf("expected older entry still processing, got %s", history[0].Status)
	}
	if history[1].Status != models.RedeemStatusDeposited {
		t.Errorf("expected latest entry deposited, got %s", history[1].Status)
	}

	var payouts []models.Payout
	db.Where("user_id = ?", user.ID).Find(&payouts)
	if len(payouts) != 1 {
		t.Fatalf("expected 1 payout, got %d", len(payouts))
	}
	if payouts[0].Amount != 2000 {
		t.Errorf("expected payout for the latest entry (2000), got %d", payouts[0].Amount)
	}
}

func TestUpdateRedeemAmountRequiresProfile(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "UPD1", 10, 2500)

	if _, err := service.UpdateRedeemAmount(ctx, user.ID, 500); !errors.Is(err, ErrBankDetailsNotFound) {
		t.Errorf("expected ErrBankDetailsNotFound, got %v", err)
	}
}

func TestUpdateRedeemAmountSnapshotsStoredProfile(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "UPD2", 10, 2500)

	// Store a profile first, then redeem against it without
	// resubmitting the fields.
	if _, err := service.RequestRedemption(ctx, user.ID, validBankInput(0)); err != nil {
		t.Fatalf("profile creation failed: %v", err)
	}

	details, err := service.UpdateRedeemAmount(ctx, user.ID, 500)
	if err != nil {
		t.Fatalf("UpdateRedeemAmount failed: %v", err)
	}
	if details.RedeemAmount != 500 {
		t.Errorf("expected redeem amount 500, got %d", details.RedeemAmount)
	}
	if details.RedeemStatus != models.RedeemStatusProcessing {
		t.Errorf("expected status processing, got %s", details.RedeemStatus)
	}

	history, err := service.GetRedeemHistory(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetRedeemHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].BankDetails == nil || history[0].BankDetails.AccountNumber != "123456789012" {
		t.Errorf("expected snapshot from stored profile, got %+v", history[0].BankDetails)
	}

	var refreshed models.User
	db.First(&refreshed, user.ID)
	if refreshed.WalletBalance != 2000 {
		t.Errorf("expected wallet balance 2000 after debit, got %d", refreshed.WalletBalance)
	}
}

func TestRequestRedemptionRejectsBadBankFormat(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "FMT1", 10, 2500)

	input := validBankInput(500)
	input.IfscCode = "BADCODE"

	_, err := service.RequestRedemption(ctx, user.ID, input)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for bad IFSC, got %v", err)
	}
}

func TestRequestRedemptionUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	service := newTestWalletService(db)
	ctx := context.Background()

	if _, err := service.RequestRedemption(ctx, 424242, validBankInput(500)); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
