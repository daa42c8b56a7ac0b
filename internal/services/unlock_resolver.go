package services

import (
	"resumeai_backend/internal/models"
	"resumeai_backend/internal/repositories"

	"gorm.io/gorm"
)

// UnlockResolver отвечает на вопрос "доступна ли фича", не глядя на баланс
type UnlockResolver interface {
	IsUnlocked(db *gorm.DB, accountID, featureID string) (bool, error)
	ActiveUnlocks(db *gorm.DB, accountID string) ([]models.FeatureUnlock, error)
}

type unlockResolver struct {
	ledgerRepo repositories.LedgerRepository
	unlockRepo repositories.FeatureUnlockRepository
	now        Clock
}

func NewUnlockResolver(ledgerRepo repositories.LedgerRepository, unlockRepo repositories.FeatureUnlockRepository, now Clock) UnlockResolver {
	if now == nil {
		now = systemClock
	}
	return &unlockResolver{
		ledgerRepo: ledgerRepo,
		unlockRepo: unlockRepo,
		now:        now,
	}
}

func (r *unlockResolver) IsUnlocked(db *gorm.DB, accountID, featureID string) (bool, error) {
	now := r.now()

	account, err := r.ledgerRepo.FindByID(db, accountID)
	if err != nil {
		return false, mapRepoError(err)
	}
	if account.HasUnlimitedPlan(now) {
		return true, nil
	}

	ok, err := r.unlockRepo.HasActive(db, accountID, featureID, now)
	if err != nil {
		return false, mapRepoError(err)
	}
	return ok, nil
}

func (r *unlockResolver) ActiveUnlocks(db *gorm.DB, accountID string) ([]models.FeatureUnlock, error) {
	unlocks, err := r.unlockRepo.ListActive(db, accountID, r.now())
	if err != nil {
		return nil, mapRepoError(err)
	}
	return unlocks, nil
}
