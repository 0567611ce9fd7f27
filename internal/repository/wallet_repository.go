package repository

import (
	"context"
	"time"

	"referral-wallet/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn inside a database transaction. The callback
// receives a Repository bound to the transaction handle; all reads and
// writes issued through it commit or roll back together.
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// forUpdate applies a row lock on dialects that support it. SQLite,
// which backs the test harness, serializes writers on its own and
// rejects the FOR UPDATE syntax.
func (r *Repository) forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByIDForUpdate retrieves a user by ID holding a row lock until
// the enclosing transaction commits. Serializes concurrent redemption
// requests for the same user.
func (r *Repository) GetUserByIDForUpdate(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.forUpdate(r.db.WithContext(ctx)).First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByReferralCode retrieves a user by their referral code
func (r *Repository) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("referral_code = ?", code).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreditReferrer atomically increments the referrer's referral counter
// and wallet balance in a single UPDATE, keyed by referral code.
// Returns the number of rows touched (0 means the code is unknown).
func (r *Repository) CreditReferrer(ctx context.Context, referrerCode string, reward int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("referral_code = ?", referrerCode).
		UpdateColumns(map[string]interface{}{
			"referral_count": gorm.Expr("referral_count + 1"),
			"wallet_balance": gorm.Expr("wallet_balance + ?", reward),
			"updated_at":     time.Now(),
		})
	return result.RowsAffected, result.Error
}

// SetWalletState writes the debited wallet balance and stamps the
// referral-count snapshot taken at this redemption. Callers must hold
// the user row lock.
func (r *Repository) SetWalletState(ctx context.Context, userID uint, balance int64, referralCountAtLastRedeem int) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"wallet_balance":                balance,
			"referral_count_at_last_redeem": referralCountAtLastRedeem,
			"updated_at":                    time.Now(),
		}).Error
}

// CreateUser creates a new user
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// DeleteUser removes a user row
func (r *Repository) DeleteUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, userID).Error
}

// GetBankDetails retrieves the bank profile for a user
func (r *Repository) GetBankDetails(ctx context.Context, userID uint) (*models.BankDetails, error) {
	var details models.BankDetails
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&details).Error
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// GetBankDetailsForUpdate retrieves the bank profile holding a row lock
func (r *Repository) GetBankDetailsForUpdate(ctx context.Context, userID uint) (*models.BankDetails, error) {
	var details models.BankDetails
	err := r.forUpdate(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		First(&details).Error
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// GetBankDetailsWithUser retrieves the bank profile joined with its user
func (r *Repository) GetBankDetailsWithUser(ctx context.Context, userID uint) (*models.BankDetails, error) {
	var details models.BankDetails
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&details).Error
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// ListBankDetailsWithUsers retrieves all bank profiles joined with users
func (r *Repository) ListBankDetailsWithUsers(ctx context.Context) ([]models.BankDetails, error) {
	var details []models.BankDetails
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at ASC").
		Find(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}

// BankDetailsExist reports whether a bank profile exists for a user
func (r *Repository) BankDetailsExist(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BankDetails{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

// CreateBankDetails creates a new bank profile
func (r *Repository) CreateBankDetails(ctx context.Context, details *models.BankDetails) error {
	return r.db.WithContext(ctx).Create(details).Error
}

// UpdateBankDetails writes the closed field set of an existing bank
// profile. Unknown fields cannot reach storage.
func (r *Repository) UpdateBankDetails(ctx context.Context, details *models.BankDetails) error {
	return r.db.WithContext(ctx).Model(&models.BankDetails{}).
		Where("user_id = ?", details.UserID).
		UpdateColumns(map[string]interface{}{
			"account_number":      details.AccountNumber,
			"ifsc_code":           details.IfscCode,
			"bank_name":           details.BankName,
			"account_holder_name": details.AccountHolderName,
			"redeem_amount":       details.RedeemAmount,
			"redeem_status":       details.RedeemStatus,
			"updated_at":          time.Now(),
		}).Error
}

// SetRedeemStatus updates only the redeem status of a bank profile
func (r *Repository) SetRedeemStatus(ctx context.Context, userID uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.BankDetails{}).
		Where("user_id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"redeem_status": status,
			"updated_at":    time.Now(),
		}).Error
}

// DeleteBankDetails removes the bank profile for a user
func (r *Repository) DeleteBankDetails(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.BankDetails{}).Error
}

// SumRedeemHistory returns the total amount ever requested by a user,
// across both processing and deposited entries.
func (r *Repository) SumRedeemHistory(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.RedeemHistory{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(redeem_amount), 0)").
		Scan(&total).Error
	return total, err
}

// CreateRedeemHistory appends a new ledger entry
func (r *Repository) CreateRedeemHistory(ctx context.Context, entry *models.RedeemHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// LatestProcessingRedeem finds the most recent processing ledger entry
// for a user, locked against concurrent writers. Returns
// gorm.ErrRecordNotFound when the user has none.
func (r *Repository) LatestProcessingRedeem(ctx context.Context, userID uint) (*models.RedeemHistory, error) {
	var entry models.RedeemHistory
	err := r.forUpdate(r.db.WithContext(ctx)).
		Where("user_id = ? AND status = ?", userID, models.RedeemStatusProcessing).
		Order("redeemed_at DESC, id DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarkRedeemDeposited flips a ledger entry to deposited, stamping the
// deposit time. This is the only mutation the ledger ever sees.
func (r *Repository) MarkRedeemDeposited(ctx context.Context, entryID uint, depositedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.RedeemHistory{}).
		Where("id = ?", entryID).
		UpdateColumns(map[string]interface{}{
			"status":       models.RedeemStatusDeposited,
			"deposited_at": depositedAt,
		}).Error
}

// ListRedeemHistory returns a user's ledger entries, oldest first
func (r *Repository) ListRedeemHistory(ctx context.Context, userID uint) ([]models.RedeemHistory, error) {
	var entries []models.RedeemHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("redeemed_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CreatePayout inserts a payout record
func (r *Repository) CreatePayout(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

// PayoutIDExists reports whether a payout with the external ID exists
func (r *Repository) PayoutIDExists(ctx context.Context, payoutID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Payout{}).
		Where("payout_id = ?", payoutID).
		Count(&count).Error
	return count > 0, err
}

// ListPayoutsByUser returns a user's payouts, newest first
func (r *Repository) ListPayoutsByUser(ctx context.Context, userID uint) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payouts).Error
	if err != nil {
		return nil, err
	}
	return payouts, nil
}

// ListAllPayouts returns every payout, newest first
func (r *Repository) ListAllPayouts(ctx context.Context) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&payouts).Error
	if err != nil {
		return nil, err
	}
	return payouts, nil
}
