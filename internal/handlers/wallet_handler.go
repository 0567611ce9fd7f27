package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-wallet/internal/auth"
	"referral-wallet/internal/models"
	"referral-wallet/internal/services"
)

type WalletHandler struct {
	walletService *services.WalletService
	bankService   *services.BankDetailsService
}

func NewWalletHandler(walletService *services.WalletService, bankService *services.BankDetailsService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		bankService:   bankService,
	}
}

// GetEligibility returns the caller's redemption ceiling figures
func (h *WalletHandler) GetEligibility(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	eligibility, err := h.walletService.ComputeEligibility(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    eligibility,
	})
}

// GetBankDetails returns the caller's bank profile with user summary
func (h *WalletHandler) GetBankDetails(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	details, err := h.bankService.GetWithUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    details,
	})
}

// SubmitBankDetails upserts the caller's bank profile and, when a
// redeem amount is present, opens a redemption
func (h *WalletHandler) SubmitBankDetails(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.BankDetailsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	details, err := h.walletService.RequestRedemption(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    details,
	})
}

// UpdateRedeemAmount opens a redemption against the stored bank profile
func (h *WalletHandler) UpdateRedeemAmount(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		RedeemAmount int64 `json:"redeem_amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	details, err := h.walletService.UpdateRedeemAmount(c.Request.Context(), userID, req.RedeemAmount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    details,
	})
}

// UpdateRedeemStatus moves a user's redemption to deposited (admin).
// The transition is forward-only; any other target status is rejected.
func (h *WalletHandler) UpdateRedeemStatus(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Status != models.RedeemStatusDeposited {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status can only be updated to 'deposited'"})
		return
	}

	details, err := h.walletService.MarkDeposited(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    details,
	})
}

// GetRedeemHistory returns the caller's redemption ledger
func (h *WalletHandler) GetRedeemHistory(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	history, err := h.walletService.GetRedeemHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    history,
		"count":   len(history),
	})
}

// GetUserRedeemHistory returns any user's redemption ledger (admin)
func (h *WalletHandler) GetUserRedeemHistory(c *gin.Context) {
	userID, ok := parseUserIDParam(c)
	if !ok {
		return
	}

	history, err := h.walletService.GetRedeemHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    history,
		"count":   len(history),
	})
}

// DeleteBankDetails removes the caller's bank profile
func (h *WalletHandler) DeleteBankDetails(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.bankService.Delete(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Bank details deleted successfully",
	})
}

// GetAllBankDetails lists every bank profile with users (admin)
func (h *WalletHandler) GetAllBankDetails(c *gin.Context) {
	details, err := h.bankService.GetAllWithUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    details,
		"count":   len(details),
	})
}

func parseUserIDParam(c *gin.Context) (uint, bool) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return 0, false
	}
	return uint(userID), true
}
