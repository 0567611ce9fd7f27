package services

import (
	"errors"
	"fmt"
)

// Not-found error kinds. Handlers translate these to 404.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrBankDetailsNotFound  = errors.New("bank details not found for this user")
	ErrInvalidReferralCode  = errors.New("invalid referral code")
	ErrRewardTargetNotFound = errors.New("reward target not found")
)

// ValidationError is a caller-correctable rejection. Handlers translate
// it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// EligibilityError rejects a redemption that exceeds the earnings
// ceiling. It carries the three figures so clients can render an
// actionable message without a second round trip.
type EligibilityError struct {
	TotalEarned          int64
	TotalAlreadyRedeemed int64
	MaxRedeemable        int64
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf(
		"You can only redeem up to ₹%d. You have earned ₹%d total and already redeemed ₹%d.",
		e.MaxRedeemable, e.TotalEarned, e.TotalAlreadyRedeemed,
	)
}
