package services

import (
	"context"
	"errors"
	"regexp"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"referral-wallet/internal/models"
	"referral-wallet/internal/repository"
)

var (
	accountNumberPattern = regexp.MustCompile(`^\d{9,18}$`)
	ifscCodePattern      = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

const maxBankFieldLength = 255

// BankDetailsInput is the closed field set a caller may submit for a
// bank profile. RedeemAmount is optional: nil (or zero) means a pure
// bank-detail update with no redemption side effects.
type BankDetailsInput struct {
	BankName          string `json:"bank_name"`
	AccountNumber     string `json:"account_number"`
	IfscCode          string `json:"ifsc_code"`
	AccountHolderName string `json:"account_holder_name"`
	RedeemAmount      *int64 `json:"redeem_amount,omitempty"`
}

// BankDetailsService manages bank profiles and their format rules
type BankDetailsService struct {
	repo *repository.Repository
}

func NewBankDetailsService(repo *repository.Repository) *BankDetailsService {
	return &BankDetailsService{repo: repo}
}

// Validate checks the format of submitted bank fields. Pure function,
// no storage access.
func (s *BankDetailsService) Validate(input BankDetailsInput) (bool, []string) {
	var errs []string

	if input.BankName == "" {
		errs = append(errs, "Bank name is required")
	}
	if input.AccountNumber == "" {
		errs = append(errs, "Account number is required")
	}
	if input.IfscCode == "" {
		errs = append(errs, "IFSC code is required")
	}
	if input.AccountHolderName == "" {
		errs = append(errs, "Account holder name is required")
	}

	if input.IfscCode != "" && !ifscCodePattern.MatchString(input.IfscCode) {
		errs = append(errs, "Invalid IFSC code format. Must be 4 letters + 0 + 6 alphanumeric characters")
	}
	if input.AccountNumber != "" && !accountNumberPattern.MatchString(input.AccountNumber) {
		errs = append(errs, "Invalid account number format")
	}
	if len(input.BankName) > maxBankFieldLength {
		errs = append(errs, "Bank name is too long")
	}
	if len(input.AccountHolderName) > maxBankFieldLength {
		errs = append(errs, "Account holder name is too long")
	}

	return len(errs) == 0, errs
}

// GetWithUser returns the bank profile joined with its user summary
func (s *BankDetailsService) GetWithUser(ctx context.Context, userID uint) (*models.BankDetails, error) {
	details, err := s.repo.GetBankDetailsWithUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBankDetailsNotFound
		}
		return nil, err
	}
	return details, nil
}

// GetAllWithUsers returns every bank profile joined with its user
func (s *BankDetailsService) GetAllWithUsers(ctx context.Context) ([]models.BankDetails, error) {
	return s.repo.ListBankDetailsWithUsers(ctx)
}

// Exists reports whether a user has a bank profile on record
func (s *BankDetailsService) Exists(ctx context.Context, userID uint) (bool, error) {
	return s.repo.BankDetailsExist(ctx, userID)
}

// Delete removes a user's bank profile. The redeem history ledger is
// untouched.
func (s *BankDetailsService) Delete(ctx context.Context, userID uint) error {
	exists, err := s.repo.BankDetailsExist(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrBankDetailsNotFound
	}

	if err := s.repo.DeleteBankDetails(ctx, userID); err != nil {
		return err
	}

	log.WithField("user_id", userID).Info("Bank details deleted")
	return nil
}
