package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-wallet/internal/services"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// CreateRewardTarget creates a reward target
func (h *AdminHandler) CreateRewardTarget(c *gin.Context) {
	var req services.RewardTargetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := h.adminService.CreateRewardTarget(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    target,
	})
}

// GetRewardTargets lists all reward targets
func (h *AdminHandler) GetRewardTargets(c *gin.Context) {
	targets, err := h.adminService.GetRewardTargets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    targets,
		"count":   len(targets),
	})
}

// UpdateRewardTarget updates a reward target by ID
func (h *AdminHandler) UpdateRewardTarget(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reward target ID"})
		return
	}

	var req services.RewardTargetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := h.adminService.UpdateRewardTarget(c.Request.Context(), uint(id), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    target,
	})
}

// DeleteRewardTarget deletes a reward target by ID
func (h *AdminHandler) DeleteRewardTarget(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reward target ID"})
		return
	}

	if err := h.adminService.DeleteRewardTarget(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reward target deleted successfully",
	})
}
