package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"referral-wallet/internal/models"
	"referral-wallet/internal/repository"
)

const referralCodeLength = 8

// Referral goal thresholds used by GetGoalStats
const (
	dailyGoalReferrals   = 5
	monthlyGoalSilver    = 25
	monthlyGoalGold      = 100
	dailyGoalReward      = "₹500 cash"
	monthlyGoalSilverGif = "Smartwatch"
	monthlyGoalGoldGift  = "₹8000 product"
)

// ReferralGoalStats summarizes a referrer's progress towards the
// time-boxed reward goals.
type ReferralGoalStats struct {
	TodayReferrals int     `json:"today_referrals"`
	MonthReferrals int     `json:"month_referrals"`
	Reward         *string `json:"reward"`
	TodayNextGoal  *string `json:"today_next_goal"`
	MonthNextGoal  *string `json:"month_next_goal"`
}

// ReferralService credits referrers when referred users register and
// answers referral reporting queries.
type ReferralService struct {
	db     *gorm.DB
	repo   *repository.Repository
	reward int64
}

// NewReferralService creates a ReferralService crediting reward rupees
// per successful referral.
func NewReferralService(db *gorm.DB, reward int64) *ReferralService {
	return &ReferralService{
		db:     db,
		repo:   repository.NewRepository(db),
		reward: reward,
	}
}

// AccrueReferral credits the owner of referrerCode with one referral
// and the per-referral reward. The increment is a single UPDATE keyed
// by code, so two simultaneous referrals to the same referrer both
// land. Returns ErrInvalidReferralCode when the code is unknown, which
// must reject the referred registration.
func (s *ReferralService) AccrueReferral(ctx context.Context, referrerCode string) error {
	rows, err := s.repo.CreditReferrer(ctx, referrerCode, s.reward)
	if err != nil {
		return fmt.Errorf("failed to credit referrer: %w", err)
	}
	if rows == 0 {
		return ErrInvalidReferralCode
	}

	log.WithFields(log.Fields{
		"referrer_code": referrerCode,
		"reward":        s.reward,
	}).Info("Referral accrued")
	return nil
}

// GenerateCode generates a fresh referral code. Random bytes rendered
// in the base58 alphabet keep codes free of ambiguous characters.
func (s *ReferralService) GenerateCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate referral code: %w", err)
	}
	code := strings.ToUpper(base58.Encode(b))
	if len(code) < referralCodeLength {
		return "", fmt.Errorf("generated code too short")
	}
	return code[:referralCodeLength], nil
}

// GetUsersReferredBy lists users who registered under a referral code
func (s *ReferralService) GetUsersReferredBy(ctx context.Context, referralCode string) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("referred_by_code = ?", referralCode).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetGoalStats computes today's and this month's referral counts for a
// code and the reward-goal messaging derived from them.
func (s *ReferralService) GetGoalStats(ctx context.Context, referralCode string) (*ReferralGoalStats, error) {
	now := time.Now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	todayCount, err := s.countReferredSince(ctx, referralCode, startOfToday)
	if err != nil {
		return nil, err
	}
	monthCount, err := s.countReferredSince(ctx, referralCode, startOfMonth)
	if err != nil {
		return nil, err
	}

	stats := &ReferralGoalStats{
		TodayReferrals: todayCount,
		MonthReferrals: monthCount,
	}

	switch {
	case monthCount >= monthlyGoalGold:
		stats.Reward = strPtr(fmt.Sprintf("%s (%d+ referrals this month)", monthlyGoalGoldGift, monthlyGoalGold))
	case monthCount >= monthlyGoalSilver:
		stats.Reward = strPtr(fmt.Sprintf("%s (%d referrals this month)", monthlyGoalSilverGif, monthlyGoalSilver))
		stats.MonthNextGoal = strPtr(fmt.Sprintf("Only %d more referrals this month to get %s", monthlyGoalGold-monthCount, monthlyGoalGoldGift))
	case todayCount >= dailyGoalReferrals:
		stats.Reward = strPtr(fmt.Sprintf("%s (%d referrals today)", dailyGoalReward, dailyGoalReferrals))
		stats.MonthNextGoal = strPtr(fmt.Sprintf("Only %d more referrals this month to get %s", monthlyGoalSilver-monthCount, monthlyGoalSilverGif))
	}

	if todayCount < dailyGoalReferrals {
		stats.TodayNextGoal = strPtr(fmt.Sprintf("Only %d more referrals today to earn %s", dailyGoalReferrals-todayCount, dailyGoalReward))
	}
	if monthCount < monthlyGoalSilver {
		stats.MonthNextGoal = strPtr(fmt.Sprintf("Only %d more referrals this month to earn %s", monthlyGoalSilver-monthCount, monthlyGoalSilverGif))
	} else if monthCount < monthlyGoalGold {
		stats.MonthNextGoal = strPtr(fmt.Sprintf("Only %d more referrals this month to earn %s", monthlyGoalGold-monthCount, monthlyGoalGoldGift))
	}

	return stats, nil
}

func (s *ReferralService) countReferredSince(ctx context.Context, referralCode string, since time.Time) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("referred_by_code = ? AND created_at >= ?", referralCode, since).
		Count(&count).Error
	return int(count), err
}

func strPtr(s string) *string {
	return &s
}
