package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"referral-wallet/internal/models"
	"referral-wallet/internal/repository"
)

// Eligibility reports how much a user may still redeem. TotalEarned is
// the lifetime ceiling (referral count times the per-referral reward);
// TotalAlreadyRedeemed sums every ledger entry regardless of status,
// since a processing request is already committed against the ceiling.
type Eligibility struct {
	TotalEarned          int64 `json:"total_earned"`
	TotalAlreadyRedeemed int64 `json:"total_already_redeemed"`
	MaxRedeemable        int64 `json:"max_redeemable"`
}

// RedeemHistoryItem is a ledger entry with its bank snapshot parsed
// back into structured form.
type RedeemHistoryItem struct {
	ID           uint                 `json:"id"`
	RedeemAmount int64                `json:"redeem_amount"`
	Status       string               `json:"status"`
	BankDetails  *models.BankSnapshot `json:"bank_details"`
	RedeemedAt   time.Time            `json:"redeemed_at"`
	DepositedAt  *time.Time           `json:"deposited_at,omitempty"`
}

// WalletService is the redemption engine: eligibility computation, the
// redemption request flow, and the processing → deposited transition
// with payout synthesis.
type WalletService struct {
	repo      *repository.Repository
	bank      *BankDetailsService
	reward    int64
	minRedeem int64
}

func NewWalletService(repo *repository.Repository, bank *BankDetailsService, reward, minRedeem int64) *WalletService {
	return &WalletService{
		repo:      repo,
		bank:      bank,
		reward:    reward,
		minRedeem: minRedeem,
	}
}

// ComputeEligibility returns the current redemption ceiling for a user
func (s *WalletService) ComputeEligibility(ctx context.Context, userID uint) (*Eligibility, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.eligibilityFor(ctx, s.repo, user)
}

// eligibilityFor computes eligibility against the given repository,
// which may be transaction-bound so the history sum and the user row
// are read under one snapshot.
func (s *WalletService) eligibilityFor(ctx context.Context, repo *repository.Repository, user *models.User) (*Eligibility, error) {
	totalRedeemed, err := repo.SumRedeemHistory(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum redeem history: %w", err)
	}

	totalEarned := int64(user.ReferralCount) * s.reward
	maxRedeemable := totalEarned - totalRedeemed
	if maxRedeemable < 0 {
		maxRedeemable = 0
	}

	return &Eligibility{
		TotalEarned:          totalEarned,
		TotalAlreadyRedeemed: totalRedeemed,
		MaxRedeemable:        maxRedeemable,
	}, nil
}

// RequestRedemption upserts the user's bank profile and, when a
// positive redeem amount is present, opens a new redemption: appends a
// processing ledger entry carrying a snapshot of the submitted bank
// fields and debits the wallet (floored at zero). All effects run in
// one transaction holding the user row lock, so a concurrent second
// request recomputes its ceiling only after this one commits.
func (s *WalletService) RequestRedemption(ctx context.Context, userID uint, input BankDetailsInput) (*models.BankDetails, error) {
	if ok, errs := s.bank.Validate(input); !ok {
		return nil, &ValidationError{Message: strings.Join(errs, "; ")}
	}

	var amount int64
	if input.RedeemAmount != nil {
		amount = *input.RedeemAmount
	}
	if amount < 0 {
		return nil, NewValidationError("Redeem amount must be greater than 0")
	}
	if amount > 0 && amount < s.minRedeem {
		return nil, NewValidationError("Minimum redeem amount is ₹%d", s.minRedeem)
	}

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		user, err := txRepo.GetUserByIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if amount > 0 {
			elig, err := s.eligibilityFor(ctx, txRepo, user)
			if err != nil {
				return err
			}
			if amount > elig.MaxRedeemable {
				return &EligibilityError{
					TotalEarned:          elig.TotalEarned,
					TotalAlreadyRedeemed: elig.TotalAlreadyRedeemed,
					MaxRedeemable:        elig.MaxRedeemable,
				}
			}
		}

		if err := s.upsertProfile(ctx, txRepo, userID, input, amount); err != nil {
			return err
		}

		if amount > 0 {
			snapshot := models.BankSnapshot{
				BankName:          input.BankName,
				AccountNumber:     input.AccountNumber,
				IfscCode:          input.IfscCode,
				AccountHolderName: input.AccountHolderName,
			}
			if err := s.openRedemption(ctx, txRepo, user, amount, snapshot); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetBankDetailsWithUser(ctx, userID)
}

// UpdateRedeemAmount opens a redemption against the bank profile
// already on record; the ledger snapshot is taken from the stored
// fields. Fails with ErrBankDetailsNotFound when no profile exists.
func (s *WalletService) UpdateRedeemAmount(ctx context.Context, userID uint, amount int64) (*models.BankDetails, error) {
	if amount <= 0 {
		return nil, NewValidationError("Redeem amount must be greater than 0")
	}
	if amount < s.minRedeem {
		return nil, NewValidationError("Minimum redeem amount is ₹%d", s.minRedeem)
	}

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		user, err := txRepo.GetUserByIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		elig, err := s.eligibilityFor(ctx, txRepo, user)
		if err != nil {
			return err
		}
		if amount > elig.MaxRedeemable {
			return &EligibilityError{
				TotalEarned:          elig.TotalEarned,
				TotalAlreadyRedeemed: elig.TotalAlreadyRedeemed,
				MaxRedeemable:        elig.MaxRedeemable,
			}
		}

		details, err := txRepo.GetBankDetails(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBankDetailsNotFound
			}
			return err
		}

		details.RedeemAmount = amount
		details.RedeemStatus = models.RedeemStatusProcessing
		if err := txRepo.UpdateBankDetails(ctx, details); err != nil {
			return err
		}

		snapshot := models.BankSnapshot{
			BankName:          details.BankName,
			AccountNumber:     details.AccountNumber,
			IfscCode:          details.IfscCode,
			AccountHolderName: details.AccountHolderName,
		}
		return s.openRedemption(ctx, txRepo, user, amount, snapshot)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetBankDetailsWithUser(ctx, userID)
}

// MarkDeposited moves the user's latest processing redemption to
// deposited and synthesizes the payout record. When no processing
// ledger entry exists the bank profile status still flips but no
// payout is created, which makes a repeated call a no-op on the ledger
// side. The transition is forward-only.
func (s *WalletService) MarkDeposited(ctx context.Context, userID uint) (*models.BankDetails, error) {
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if _, err := txRepo.GetBankDetailsForUpdate(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBankDetailsNotFound
			}
			return err
		}

		if err := txRepo.SetRedeemStatus(ctx, userID, models.RedeemStatusDeposited); err != nil {
			return err
		}

		entry, err := txRepo.LatestProcessingRedeem(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Nothing in flight: status flip only, no payout.
				return nil
			}
			return err
		}

		now := time.Now()
		if err := txRepo.MarkRedeemDeposited(ctx, entry.ID, now); err != nil {
			return err
		}

		payout := s.buildPayout(userID, entry, now)
		if err := txRepo.CreatePayout(ctx, payout); err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"user_id":   userID,
			"entry_id":  entry.ID,
			"payout_id": payout.PayoutID,
			"amount":    entry.RedeemAmount,
		}).Info("Redemption deposited, payout recorded")
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetBankDetailsWithUser(ctx, userID)
}

// GetRedeemHistory returns a user's ledger, oldest first, with each
// bank snapshot parsed back to the fields submitted at request time.
func (s *WalletService) GetRedeemHistory(ctx context.Context, userID uint) ([]RedeemHistoryItem, error) {
	entries, err := s.repo.ListRedeemHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]RedeemHistoryItem, 0, len(entries))
	for _, entry := range entries {
		item := RedeemHistoryItem{
			ID:           entry.ID,
			RedeemAmount: entry.RedeemAmount,
			Status:       entry.Status,
			RedeemedAt:   entry.RedeemedAt,
			DepositedAt:  entry.DepositedAt,
		}
		if entry.BankDetails != "" {
			var snapshot models.BankSnapshot
			if err := json.Unmarshal([]byte(entry.BankDetails), &snapshot); err != nil {
				log.WithFields(log.Fields{
					"user_id":  userID,
					"entry_id": entry.ID,
				}).WithError(err).Warn("Unparseable bank snapshot in redeem history")
			} else {
				item.BankDetails = &snapshot
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// upsertProfile creates or overwrites the bank profile with the
// submitted fields; the in-flight redeem amount/status are touched
// only when this call opens a redemption.
func (s *WalletService) upsertProfile(ctx context.Context, txRepo *repository.Repository, userID uint, input BankDetailsInput, amount int64) error {
	existing, err := txRepo.GetBankDetails(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if existing == nil {
		details := &models.BankDetails{
			UserID:            userID,
			AccountNumber:     input.AccountNumber,
			IfscCode:          input.IfscCode,
			BankName:          input.BankName,
			AccountHolderName: input.AccountHolderName,
			RedeemStatus:      models.RedeemStatusProcessing,
		}
		if amount > 0 {
			details.RedeemAmount = amount
		}
		return txRepo.CreateBankDetails(ctx, details)
	}

	existing.AccountNumber = input.AccountNumber
	existing.IfscCode = input.IfscCode
	existing.BankName = input.BankName
	existing.AccountHolderName = input.AccountHolderName
	if amount > 0 {
		existing.RedeemAmount = amount
		existing.RedeemStatus = models.RedeemStatusProcessing
	}
	return txRepo.UpdateBankDetails(ctx, existing)
}

// openRedemption appends the processing ledger entry and debits the
// wallet, floored at zero. Callers hold the user row lock.
func (s *WalletService) openRedemption(ctx context.Context, txRepo *repository.Repository, user *models.User, amount int64, snapshot models.BankSnapshot) error {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize bank snapshot: %w", err)
	}

	entry := &models.RedeemHistory{
		UserID:       user.ID,
		RedeemAmount: amount,
		Status:       models.RedeemStatusProcessing,
		BankDetails:  string(snapshotJSON),
	}
	if err := txRepo.CreateRedeemHistory(ctx, entry); err != nil {
		return fmt.Errorf("failed to append redeem history: %w", err)
	}

	newBalance := user.WalletBalance - amount
	if newBalance < 0 {
		newBalance = 0
	}
	if err := txRepo.SetWalletState(ctx, user.ID, newBalance, user.ReferralCount); err != nil {
		return fmt.Errorf("failed to debit wallet: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":     user.ID,
		"amount":      amount,
		"new_balance": newBalance,
	}).Info("Redemption opened")
	return nil
}

// buildPayout synthesizes the payout record for a deposited ledger
// entry, falling back to N/A for snapshot fields that fail to parse.
func (s *WalletService) buildPayout(userID uint, entry *models.RedeemHistory, at time.Time) *models.Payout {
	var snapshot models.BankSnapshot
	if entry.BankDetails != "" {
		if err := json.Unmarshal([]byte(entry.BankDetails), &snapshot); err != nil {
			log.WithField("entry_id", entry.ID).WithError(err).Warn("Bank snapshot unreadable, payout fields fall back to N/A")
		}
	}

	txnID := fmt.Sprintf("TXN-%d", at.UnixMilli())
	return &models.Payout{
		UserID:      userID,
		PayoutID:    fmt.Sprintf("PAY-%d-%d", at.UnixMilli(), userID),
		Amount:      entry.RedeemAmount,
		Method:      models.PayoutMethodBankTransfer,
		Status:      models.PayoutStatusCompleted,
		Description: "Wallet Redemption Payout",
		BankDetails: fmt.Sprintf("%s - A/C: %s - IFSC: %s",
			orNA(snapshot.BankName), orNA(snapshot.AccountNumber), orNA(snapshot.IfscCode)),
		TransactionID: &txnID,
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
