package services

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"referral-wallet/internal/models"
)

// RewardTargetInput is the closed field set for reward target writes
type RewardTargetInput struct {
	ReferralCount int    `json:"referral_count"`
	Reward        string `json:"reward"`
}

// AdminService manages the reward-target catalogue
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// CreateRewardTarget creates a reward target
func (s *AdminService) CreateRewardTarget(ctx context.Context, input RewardTargetInput) (*models.RewardTarget, error) {
	if input.ReferralCount <= 0 {
		return nil, NewValidationError("Referral count must be greater than 0")
	}
	if input.Reward == "" {
		return nil, NewValidationError("Reward is required")
	}

	target := &models.RewardTarget{
		ReferralCount: input.ReferralCount,
		Reward:        input.Reward,
	}
	if err := s.db.WithContext(ctx).Create(target).Error; err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"referral_count": target.ReferralCount,
		"reward":         target.Reward,
	}).Info("Reward target created")
	return target, nil
}

// GetRewardTargets lists reward targets ordered by threshold
func (s *AdminService) GetRewardTargets(ctx context.Context) ([]models.RewardTarget, error) {
	var targets []models.RewardTarget
	err := s.db.WithContext(ctx).Order("referral_count ASC").Find(&targets).Error
	if err != nil {
		return nil, err
	}
	return targets, nil
}

// UpdateRewardTarget updates an existing reward target
func (s *AdminService) UpdateRewardTarget(ctx context.Context, id uint, input RewardTargetInput) (*models.RewardTarget, error) {
	var target models.RewardTarget
	if err := s.db.WithContext(ctx).First(&target, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRewardTargetNotFound
		}
		return nil, err
	}

	if input.ReferralCount > 0 {
		target.ReferralCount = input.ReferralCount
	}
	if input.Reward != "" {
		target.Reward = input.Reward
	}

	if err := s.db.WithContext(ctx).Save(&target).Error; err != nil {
		return nil, err
	}
	return &target, nil
}

// DeleteRewardTarget removes a reward target
func (s *AdminService) DeleteRewardTarget(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.RewardTarget{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRewardTargetNotFound
	}
	return nil
}
