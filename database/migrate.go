package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"resumeai_backend/internal/models"
)

// AutoMigrate создает таблицы леджера, заказов и разблокировок
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Account{},
		&models.UsageRecord{},
		&models.PaymentOrder{},
		&models.FeatureUnlock{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	log.Println("AutoMigrate completed")
	return nil
}
