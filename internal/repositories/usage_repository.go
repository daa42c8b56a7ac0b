package repositories

import (
	"time"

	"resumeai_backend/internal/models"

	"gorm.io/gorm"
)

// UsageRepository - чтение журнала списаний. Записи создает только LedgerRepository.Debit.
type UsageRepository interface {
	CountSince(db *gorm.DB, accountID, actionKind string, since time.Time) (int64, error)
	ListByAccount(db *gorm.DB, accountID string, limit, offset int) ([]models.UsageRecord, int64, error)
}

type UsageRepositoryImpl struct{}

func NewUsageRepository() UsageRepository {
	return &UsageRepositoryImpl{}
}

func (r *UsageRepositoryImpl) CountSince(db *gorm.DB, accountID, actionKind string, since time.Time) (int64, error) {
	var count int64
	err := db.Model(&models.UsageRecord{}).
		Where("account_id = ? AND action_kind = ? AND created_at >= ?", accountID, actionKind, since.UTC()).
		Count(&count).Error
	return count, err
}

func (r *UsageRepositoryImpl) ListByAccount(db *gorm.DB, accountID string, limit, offset int) ([]models.UsageRecord, int64, error) {
	var (
		records []models.UsageRecord
		total   int64
	)

	if err := db.Model(&models.UsageRecord{}).Where("account_id = ?", accountID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, total, err
}
