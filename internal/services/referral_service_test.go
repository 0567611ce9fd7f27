package services

import (
	"context"
	"errors"
	"testing"

	"referral-wallet/internal/models"
)

func TestAccrueReferralAdditivity(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db, 250)
	ctx := context.Background()

	referrer := createTestUser(t, db, "ACC1", 0, 0)
	bystander := createTestUser(t, db, "ACC2", 3, 750)

	for i := 0; i < 5; i++ {
		if err := service.AccrueReferral(ctx, referrer.ReferralCode); err != nil {
			t.Fatalf("accrual %d failed: %v", i+1, err)
		}
	}

	var refreshed models.User
	if err := db.First(&refreshed, referrer.ID).Error; err != nil {
		t.Fatalf("failed to reload referrer: %v", err)
	}
	if refreshed.ReferralCount != 5 {
		t.Errorf("expected referral count 5, got %d", refreshed.ReferralCount)
	}
	if refreshed.WalletBalance != 1250 {
		t.Errorf("expected wallet balance 1250, got %d", refreshed.WalletBalance)
	}

	var other models.User
	db.First(&other, bystander.ID)
	if other.ReferralCount != 3 || other.WalletBalance != 750 {
		t.Errorf("bystander mutated: count=%d balance=%d", other.ReferralCount, other.WalletBalance)
	}
}

func TestAccrueReferralUnknownCode(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db, 250)
	ctx := context.Background()

	if err := service.AccrueReferral(ctx, "NOSUCHCODE"); !errors.Is(err, ErrInvalidReferralCode) {
		t.Errorf("expected ErrInvalidReferralCode, got %v", err)
	}
}

func TestGenerateCode(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db, 250)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := service.GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode failed: %v", err)
		}
		if len(code) != referralCodeLength {
			t.Fatalf("expected code length %d, got %q", referralCodeLength, code)
		}
		if seen[code] {
			t.Fatalf("duplicate code generated: %s", code)
		}
		seen[code] = true
	}
}

func TestGetUsersReferredBy(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db, 250)
	ctx := context.Background()

	referrer := createTestUser(t, db, "REF1", 0, 0)
	first := createTestUser(t, db, "REF2", 0, 0)
	second := createTestUser(t, db, "REF3", 0, 0)
	createTestUser(t, db, "REF4", 0, 0)

	db.Model(&models.User{}).Where("id = ?", first.ID).Update("referred_by_code", referrer.ReferralCode)
	db.Model(&models.User{}).Where("id = ?", second.ID).Update("referred_by_code", referrer.ReferralCode)

	referred, err := service.GetUsersReferredBy(ctx, referrer.ReferralCode)
	if err != nil {
		t.Fatalf("GetUsersReferredBy failed: %v", err)
	}
	if len(referred) != 2 {
		t.Fatalf("expected 2 referred users, got %d", len(referred))
	}
	if referred[0].ID != first.ID || referred[1].ID != second.ID {
		t.Errorf("expected registration order %d,%d; got %d,%d",
			first.ID, second.ID, referred[0].ID, referred[1].ID)
	}
}

func TestGetGoalStats(t *testing.T) {
	db := setupTestDB(t)
	service := NewReferralService(db, 250)
	ctx := context.Background()

	referrer := createTestUser(t, db, "GOAL1", 0, 0)
	for i := 0; i < 2; i++ {
		referred := createTestUser(t, db, "GOALR"+string(rune('A'+i)), 0, 0)
		db.Model(&models.User{}).Where("id = ?", referred.ID).Update("referred_by_code", referrer.ReferralCode)
	}

	stats, err := service.GetGoalStats(ctx, referrer.ReferralCode)
	if err != nil {
		t.Fatalf("GetGoalStats failed: %v", err)
	}
	if stats.TodayReferrals != 2 {
		t.Errorf("expected 2 referrals today, got %d", stats.TodayReferrals)
	}
	if stats.MonthReferrals != 2 {
		t.Errorf("expected 2 referrals this month, got %d", stats.MonthReferrals)
	}
	if stats.Reward != nil {
		t.Errorf("expected no reward at 2 referrals, got %q", *stats.Reward)
	}
	if stats.TodayNextGoal == nil {
		t.Fatal("expected a today goal message")
	}
	if *stats.TodayNextGoal != "Only 3 more referrals today to earn ₹500 cash" {
		t.Errorf("unexpected today goal message: %q", *stats.TodayNextGoal)
	}
	if stats.MonthNextGoal == nil {
		t.Fatal("expected a month goal message")
	}
	if *stats.MonthNextGoal != "Only 23 more referrals this month to earn Smartwatch" {
		t.Errorf("unexpected month goal message: %q", *stats.MonthNextGoal)
	}
}
