package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"referral-wallet/internal/services"
)

// respondError translates service errors to transport responses: typed
// not-found and validation errors become 4xx, everything else a
// generic 500. Eligibility rejections carry the three ceiling figures
// so clients can render the message without another round trip.
func respondError(c *gin.Context, err error) {
	var eligErr *services.EligibilityError
	if errors.As(err, &eligErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":                  eligErr.Error(),
			"total_earned":           eligErr.TotalEarned,
			"total_already_redeemed": eligErr.TotalAlreadyRedeemed,
			"max_redeemable":         eligErr.MaxRedeemable,
		})
		return
	}

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrBankDetailsNotFound),
		errors.Is(err, services.ErrInvalidReferralCode),
		errors.Is(err, services.ErrRewardTargetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
