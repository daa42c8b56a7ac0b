package repositories

import (
	"time"

	"resumeai_backend/internal/models"

	"gorm.io/gorm"
)

type FeatureUnlockRepository interface {
	Grant(db *gorm.DB, unlock *models.FeatureUnlock) error
	HasActive(db *gorm.DB, accountID, featureID string, now time.Time) (bool, error)
	ListActive(db *gorm.DB, accountID string, now time.Time) ([]models.FeatureUnlock, error)
}

type FeatureUnlockRepositoryImpl struct{}

func NewFeatureUnlockRepository() FeatureUnlockRepository {
	return &FeatureUnlockRepositoryImpl{}
}

func (r *FeatureUnlockRepositoryImpl) Grant(db *gorm.DB, unlock *models.FeatureUnlock) error {
	if unlock.ExpiresAt != nil {
		expiresAt := unlock.ExpiresAt.UTC()
		unlock.ExpiresAt = &expiresAt
	}
	return db.Create(unlock).Error
}

func (r *FeatureUnlockRepositoryImpl) HasActive(db *gorm.DB, accountID, featureID string, now time.Time) (bool, error) {
	var count int64
	err := db.Model(&models.FeatureUnlock{}).
		Where("account_id = ? AND feature_id = ?", accountID, featureID).
		Where("expires_at IS NULL OR expires_at > ?", now.UTC()).
		Count(&count).Error
	return count > 0, err
}

func (r *FeatureUnlockRepositoryImpl) ListActive(db *gorm.DB, accountID string, now time.Time) ([]models.FeatureUnlock, error) {
	var unlocks []models.FeatureUnlock
	err := db.Where("account_id = ?", accountID).
		Where("expires_at IS NULL OR expires_at > ?", now.UTC()).
		Order("created_at DESC").
		Find(&unlocks).Error
	return unlocks, err
}
