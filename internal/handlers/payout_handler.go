package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-wallet/internal/auth"
	"referral-wallet/internal/services"
)

type PayoutHandler struct {
	payoutService *services.PayoutService
}

func NewPayoutHandler(payoutService *services.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutService: payoutService}
}

// GetMyPayouts returns the caller's payouts, newest first
func (h *PayoutHandler) GetMyPayouts(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payouts, err := h.payoutService.GetPayoutsByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payouts,
		"count":   len(payouts),
	})
}

// GetUserPayouts returns any user's payouts (admin)
func (h *PayoutHandler) GetUserPayouts(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok {
		return
	}

	payouts, err := h.payoutService.GetPayoutsByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    payouts,
		"count":   len(payouts),
	})
}

// CreatePayout records a payout manually (admin)
func (h *PayoutHandler) CreatePayout(c *gin.Context) {
	var req services.CreatePayoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payout, err := h.payoutService.CreatePayout(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    payout,
	})
}

// GetPayoutStats returns aggregate payout totals (admin)
func (h *PayoutHandler) GetPayoutStats(c *gin.Context) {
	stats, err := h.payoutService.GetPayoutStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
