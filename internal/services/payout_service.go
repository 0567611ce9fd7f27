package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"referral-wallet/internal/models"
	"referral-wallet/internal/repository"
)

// CreatePayoutInput is the closed field set for manually recorded
// payouts (admin surface). The wallet engine's own payouts are
// synthesized by WalletService.MarkDeposited instead.
type CreatePayoutInput struct {
	UserID        uint    `json:"user_id"`
	PayoutID      string  `json:"payout_id"`
	Amount        int64   `json:"amount"`
	Method        string  `json:"method"`
	Status        string  `json:"status"`
	Description   string  `json:"description"`
	BankDetails   string  `json:"bank_details"`
	TransactionID *string `json:"transaction_id,omitempty"`
}

// PayoutStats aggregates payout totals by status
type PayoutStats struct {
	TotalCount      int64           `json:"total_count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CompletedAmount decimal.Decimal `json:"completed_amount"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`
	FailedAmount    decimal.Decimal `json:"failed_amount"`
	CompletionRate  decimal.Decimal `json:"completion_rate"`
}

// PayoutService manages the payouts surface: manual records, listings
// and statistics.
type PayoutService struct {
	db   *gorm.DB
	repo *repository.Repository
}

func NewPayoutService(db *gorm.DB) *PayoutService {
	return &PayoutService{
		db:   db,
		repo: repository.NewRepository(db),
	}
}

// CreatePayout records a payout. A missing payout ID gets a generated
// one; duplicate IDs are rejected.
func (s *PayoutService) CreatePayout(ctx context.Context, input CreatePayoutInput) (*models.Payout, error) {
	if input.Amount <= 0 {
		return nil, NewValidationError("Payout amount must be greater than 0")
	}

	if _, err := s.repo.GetUserByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	payoutID := input.PayoutID
	if payoutID == "" {
		payoutID = fmt.Sprintf("PAY-%s", uuid.NewString())
	}

	exists, err := s.repo.PayoutIDExists(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, NewValidationError("Payout ID already exists")
	}

	status := input.Status
	if status == "" {
		status = models.PayoutStatusPending
	}

	payout := &models.Payout{
		UserID:        input.UserID,
		PayoutID:      payoutID,
		Amount:        input.Amount,
		Method:        input.Method,
		Status:        status,
		Description:   input.Description,
		BankDetails:   input.BankDetails,
		TransactionID: input.TransactionID,
	}

	if err := s.repo.CreatePayout(ctx, payout); err != nil {
		return nil, fmt.Errorf("failed to create payout: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":   input.UserID,
		"payout_id": payoutID,
		"amount":    input.Amount,
	}).Info("Payout recorded")
	return payout, nil
}

// GetPayoutsByUser returns a user's payouts, newest first
func (s *PayoutService) GetPayoutsByUser(ctx context.Context, userID uint) ([]models.Payout, error) {
	return s.repo.ListPayoutsByUser(ctx, userID)
}

// GetAllPayouts returns every payout, newest first
func (s *PayoutService) GetAllPayouts(ctx context.Context) ([]models.Payout, error) {
	return s.repo.ListAllPayouts(ctx)
}

// GetPayoutStats aggregates totals and the completion rate across all
// payouts.
func (s *PayoutService) GetPayoutStats(ctx context.Context) (*PayoutStats, error) {
	type row struct {
		Status string
		Total  int64
		Count  int64
	}

	var rows []row
	err := s.db.WithContext(ctx).Model(&models.Payout{}).
		Select("status, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &PayoutStats{
		TotalAmount:     decimal.Zero,
		CompletedAmount: decimal.Zero,
		PendingAmount:   decimal.Zero,
		FailedAmount:    decimal.Zero,
		CompletionRate:  decimal.Zero,
	}

	var completedCount int64
	for _, r := range rows {
		amount := decimal.NewFromInt(r.Total)
		stats.TotalCount += r.Count
		stats.TotalAmount = stats.TotalAmount.Add(amount)
		switch r.Status {
		case models.PayoutStatusCompleted:
			stats.CompletedAmount = amount
			completedCount = r.Count
		case models.PayoutStatusPending, models.PayoutStatusProcessing:
			stats.PendingAmount = stats.PendingAmount.Add(amount)
		case models.PayoutStatusFailed:
			stats.FailedAmount = amount
		}
	}

	if stats.TotalCount > 0 {
		stats.CompletionRate = decimal.NewFromInt(completedCount).
			Div(decimal.NewFromInt(stats.TotalCount)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	return stats, nil
}
