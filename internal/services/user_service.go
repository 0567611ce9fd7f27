package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"referral-wallet/internal/models"
	"referral-wallet/internal/repository"
)

// RegisterUserInput is the closed field set for registration
type RegisterUserInput struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	MobileNumber string  `json:"mobile_number"`
	ReferralCode string  `json:"referral_code,omitempty"`
	Gender       *string `json:"gender,omitempty"`
	Address      *string `json:"address,omitempty"`
}

// UserService handles registration, authentication and user reads
type UserService struct {
	db       *gorm.DB
	repo     *repository.Repository
	referral *ReferralService
}

func NewUserService(db *gorm.DB, referral *ReferralService) *UserService {
	return &UserService{
		db:       db,
		repo:     repository.NewRepository(db),
		referral: referral,
	}
}

// RegisterUser creates a user. When a referral code is supplied it
// must belong to an existing user; the referrer is credited before the
// new account is created, and an unknown code rejects the registration
// outright.
func (s *UserService) RegisterUser(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, NewValidationError("Name, email, and password are required")
	}
	if input.MobileNumber == "" {
		return nil, NewValidationError("Mobile number is required")
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	ownCode, err := s.referral.GenerateCode()
	if err != nil {
		return nil, err
	}

	var referredByCode *string
	if input.ReferralCode != "" {
		referrer, err := s.repo.GetUserByReferralCode(ctx, input.ReferralCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrInvalidReferralCode, input.ReferralCode)
			}
			return nil, err
		}
		if err := s.referral.AccrueReferral(ctx, referrer.ReferralCode); err != nil {
			return nil, err
		}
		referredByCode = &referrer.ReferralCode
	}

	user := &models.User{
		Name:           input.Name,
		Email:          input.Email,
		MobileNumber:   input.MobileNumber,
		Gender:         input.Gender,
		Address:        input.Address,
		PasswordHash:   passwordHash,
		ReferralCode:   ownCode,
		ReferredByCode: referredByCode,
		PaymentStatus:  models.PaymentStatusPending,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":       user.ID,
		"referral_code": user.ReferralCode,
		"referred_by":   input.ReferralCode,
	}).Info("User registered")
	return user, nil
}

// Authenticate verifies email/password and returns the user
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !verifyPassword(password, user.PasswordHash) {
		return nil, NewValidationError("Invalid email or password")
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetWalletBalance returns a user's current wallet balance
func (s *UserService) GetWalletBalance(ctx context.Context, userID uint) (int64, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.WalletBalance, nil
}

// DeleteUser removes a user and their bank profile in one transaction.
// The redeem history ledger and payouts survive: the audit trail must
// outlive the account.
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	return s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if _, err := txRepo.GetUserByID(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := txRepo.DeleteBankDetails(ctx, userID); err != nil {
			return err
		}
		return txRepo.DeleteUser(ctx, userID)
	})
}

// hashPassword derives a salted SHA-256 digest, hex encoded as
// "salt:digest".
func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	digest := sha256.Sum256(append(salt, []byte(password)...))
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(digest[:]), nil
}

func verifyPassword(password, stored string) bool {
	parts := strings.SplitN(stored, ":", 2)
	if len(parts) != 2 {
		return false
	}

	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	digest := sha256.Sum256(append(salt, []byte(password)...))
	return subtle.ConstantTimeCompare(digest[:], expected) == 1
}
