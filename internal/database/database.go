package database

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"referral-wallet/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	// Users first, wallet tables depend on it
	coreModels := []interface{}{
		&models.User{},
		&models.RewardTarget{},
	}

	for _, model := range coreModels {
		if err := DB.AutoMigrate(model); err != nil {
			log.Warnf("Migration issue for %T: %v", model, err)
		}
	}

	walletModels := []interface{}{
		&models.BankDetails{},
		&models.RedeemHistory{},
		&models.Payout{},
	}

	for _, model := range walletModels {
		if err := DB.AutoMigrate(model); err != nil {
			log.Warnf("Migration issue for %T: %v", model, err)
		}
	}

	log.Info("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
