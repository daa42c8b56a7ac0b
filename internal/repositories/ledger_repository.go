package repositories

import (
	"errors"
	"fmt"
	"time"

	"resumeai_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNonPositiveAmount   = errors.New("ledger amount must be positive")
)

// InsufficientBalanceError несет фактический баланс на момент отказа
type InsufficientBalanceError struct {
	Available int64
	Required  int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %d, required %d", e.Available, e.Required)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// LedgerRepository - единственное место, где меняется Account.Balance.
// Все методы принимают *gorm.DB, чтобы их можно было вызвать внутри чужой транзакции.
type LedgerRepository interface {
	GetOrCreateAccount(db *gorm.DB, externalID, email, name string, startingBalance int64) (*models.Account, error)
	FindByID(db *gorm.DB, id string) (*models.Account, error)
	FindByExternalID(db *gorm.DB, externalID string) (*models.Account, error)

	Debit(db *gorm.DB, accountID string, amount int64, actionKind string, at time.Time, metadata datatypes.JSON) (int64, error)
	Credit(db *gorm.DB, accountID string, amount int64) (int64, error)

	ExtendPlan(db *gorm.DB, accountID string, expiresAt time.Time) error
	ExpirePlans(db *gorm.DB, now time.Time) (int64, error)
}

type LedgerRepositoryImpl struct{}

func NewLedgerRepository() LedgerRepository {
	return &LedgerRepositoryImpl{}
}

// GetOrCreateAccount - upsert по external_id. Гонку двух первых запросов решает уникальный индекс.
func (r *LedgerRepositoryImpl) GetOrCreateAccount(db *gorm.DB, externalID, email, name string, startingBalance int64) (*models.Account, error) {
	account := models.Account{
		ExternalID: externalID,
		Email:      email,
		Name:       name,
		Balance:    startingBalance,
		Plan:       models.PlanFree,
		Status:     models.SubscriptionStatusInactive,
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(&account).Error
	if err != nil {
		return nil, fmt.Errorf("upsert account: %w", err)
	}

	return r.FindByExternalID(db, externalID)
}

func (r *LedgerRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Account, error) {
	var account models.Account
	if err := db.First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *LedgerRepositoryImpl) FindByExternalID(db *gorm.DB, externalID string) (*models.Account, error) {
	var account models.Account
	if err := db.First(&account, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Debit списывает amount и пишет UsageRecord в одной транзакции.
// Условный UPDATE берет блокировку строки, поэтому параллельные списания сериализуются.
func (r *LedgerRepositoryImpl) Debit(db *gorm.DB, accountID string, amount int64, actionKind string, at time.Time, metadata datatypes.JSON) (int64, error) {
	if amount <= 0 {
		return 0, ErrNonPositiveAmount
	}

	var newBalance int64
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Account{}).
			Where("id = ? AND balance >= ?", accountID, amount).
			Updates(map[string]interface{}{
				"balance": gorm.Expr("balance - ?", amount),
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			account, err := r.FindByID(tx, accountID)
			if err != nil {
				return err
			}
			return &InsufficientBalanceError{Available: account.Balance, Required: amount}
		}

		record := models.UsageRecord{
			AccountID:  accountID,
			ActionKind: actionKind,
			Amount:     amount,
			Metadata:   metadata,
			CreatedAt:  at.UTC(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("insert usage record: %w", err)
		}

		return r.readBalance(tx, accountID, &newBalance)
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Credit увеличивает баланс. Вызывается только внутри транзакции расчета заказа.
func (r *LedgerRepositoryImpl) Credit(db *gorm.DB, accountID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrNonPositiveAmount
	}

	var newBalance int64
	err := db.Transaction(func(tx *gorm.DB) error {
		if amount > 0 {
			result := tx.Model(&models.Account{}).
				Where("id = ?", accountID).
				Updates(map[string]interface{}{
					"balance": gorm.Expr("balance + ?", amount),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrAccountNotFound
			}
		}
		return r.readBalance(tx, accountID, &newBalance)
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (r *LedgerRepositoryImpl) readBalance(tx *gorm.DB, accountID string, out *int64) error {
	account, err := r.FindByID(tx, accountID)
	if err != nil {
		return err
	}
	*out = account.Balance
	return nil
}

// ExtendPlan включает платный план до expiresAt
func (r *LedgerRepositoryImpl) ExtendPlan(db *gorm.DB, accountID string, expiresAt time.Time) error {
	expiresAt = expiresAt.UTC()
	result := db.Model(&models.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"plan":            models.PlanPaid,
			"status":          models.SubscriptionStatusActive,
			"plan_expires_at": &expiresAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ExpirePlans переводит истекшие платные планы в free/inactive
func (r *LedgerRepositoryImpl) ExpirePlans(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.Account{}).
		Where("plan = ? AND status = ? AND plan_expires_at IS NOT NULL AND plan_expires_at <= ?",
			models.PlanPaid, models.SubscriptionStatusActive, now.UTC()).
		Updates(map[string]interface{}{
			"plan":   models.PlanFree,
			"status": models.SubscriptionStatusInactive,
		})
	return result.RowsAffected, result.Error
}
