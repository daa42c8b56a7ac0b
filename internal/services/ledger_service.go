package services

import (
	"encoding/json"

	"resumeai_backend/internal/models"
	"resumeai_backend/internal/repositories"
	"resumeai_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LedgerService - доступ к аккаунтам и списаниям. Начисление кредитов здесь нет:
// оно происходит только при расчете заказа в VerificationService.
type LedgerService interface {
	GetOrCreateAccount(db *gorm.DB, externalID, email, name string) (*models.Account, error)
	GetAccount(db *gorm.DB, accountID string) (*models.Account, error)
	Debit(db *gorm.DB, accountID string, amount int64, actionKind string, meta map[string]string) (int64, error)
	UsageHistory(db *gorm.DB, accountID string, limit, offset int) ([]models.UsageRecord, int64, error)
}

type ledgerService struct {
	ledgerRepo      repositories.LedgerRepository
	usageRepo       repositories.UsageRepository
	startingCredits int64
	retries         int
	now             Clock
}

func NewLedgerService(
	ledgerRepo repositories.LedgerRepository,
	usageRepo repositories.UsageRepository,
	startingCredits int64,
	retries int,
	now Clock,
) LedgerService {
	if now == nil {
		now = systemClock
	}
	return &ledgerService{
		ledgerRepo:      ledgerRepo,
		usageRepo:       usageRepo,
		startingCredits: startingCredits,
		retries:         retries,
		now:             now,
	}
}

func (s *ledgerService) GetOrCreateAccount(db *gorm.DB, externalID, email, name string) (*models.Account, error) {
	if externalID == "" {
		return nil, apperrors.NewBadRequestError("external identity is required")
	}

	var account *models.Account
	err := withRetry(s.retries, func() error {
		var err error
		account, err = s.ledgerRepo.GetOrCreateAccount(db, externalID, email, name, s.startingCredits)
		return err
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return account, nil
}

func (s *ledgerService) GetAccount(db *gorm.DB, accountID string) (*models.Account, error) {
	account, err := s.ledgerRepo.FindByID(db, accountID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return account, nil
}

// Debit - авторитетное списание. Поздний InsufficientCredit после успешного authorize
// означает, что параллельный запрос потратил кредиты раньше.
func (s *ledgerService) Debit(db *gorm.DB, accountID string, amount int64, actionKind string, meta map[string]string) (int64, error) {
	if amount <= 0 {
		return 0, apperrors.ErrInvalidAmount
	}

	var metadata datatypes.JSON
	if len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err != nil {
			return 0, apperrors.InternalError(err)
		}
		metadata = raw
	}

	var balance int64
	err := withRetry(s.retries, func() error {
		var err error
		balance, err = s.ledgerRepo.Debit(db, accountID, amount, actionKind, s.now(), metadata)
		return err
	})
	if err != nil {
		return 0, mapRepoError(err)
	}
	return balance, nil
}

func (s *ledgerService) UsageHistory(db *gorm.DB, accountID string, limit, offset int) ([]models.UsageRecord, int64, error) {
	limit, offset = clampPage(limit, offset)
	records, total, err := s.usageRepo.ListByAccount(db, accountID, limit, offset)
	if err != nil {
		return nil, 0, mapRepoError(err)
	}
	return records, total, nil
}
