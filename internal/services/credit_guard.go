package services

import (
	"time"

	"resumeai_backend/internal/repositories"
	"resumeai_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type DecisionKind string

const (
	DecisionAllowed            DecisionKind = "allowed"
	DecisionInsufficientCredit DecisionKind = "insufficient_credit"
	DecisionRateLimited        DecisionKind = "rate_limited"
)

// AuthDecision - результат предварительной проверки платного действия
type AuthDecision struct {
	Kind      DecisionKind `json:"decision"`
	Available int64        `json:"available"`
	Required  int64        `json:"required"`
	Remaining int          `json:"remaining"`
	ResetAt   *time.Time   `json:"reset_at,omitempty"`
}

func (d *AuthDecision) Allowed() bool {
	return d.Kind == DecisionAllowed
}

// Err превращает отказ в ошибку с деталями для UI; для Allowed возвращает nil
func (d *AuthDecision) Err(now time.Time) error {
	switch d.Kind {
	case DecisionInsufficientCredit:
		return apperrors.InsufficientCredit(d.Available, d.Required)
	case DecisionRateLimited:
		return apperrors.RateLimited(*d.ResetAt, now)
	}
	return nil
}

// CreditGuard - баланс + дневной лимит. Проверка не атомарна со списанием:
// окончательное решение принимает Debit.
type CreditGuard interface {
	Authorize(db *gorm.DB, accountID string, requiredCredits int64, actionKind string) (*AuthDecision, error)
}

type creditGuard struct {
	ledgerRepo  repositories.LedgerRepository
	rateLimiter RateLimiter
	now         Clock
}

func NewCreditGuard(ledgerRepo repositories.LedgerRepository, rateLimiter RateLimiter, now Clock) CreditGuard {
	if now == nil {
		now = systemClock
	}
	return &creditGuard{
		ledgerRepo:  ledgerRepo,
		rateLimiter: rateLimiter,
		now:         now,
	}
}

func (g *creditGuard) Authorize(db *gorm.DB, accountID string, requiredCredits int64, actionKind string) (*AuthDecision, error) {
	if requiredCredits <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	account, err := g.ledgerRepo.FindByID(db, accountID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	decision := &AuthDecision{Available: account.Balance, Required: requiredCredits}
	if account.Balance < requiredCredits {
		decision.Kind = DecisionInsufficientCredit
		return decision, nil
	}

	quota, err := g.rateLimiter.CheckDailyQuota(db, accountID, actionKind, account.HasUnlimitedPlan(g.now()))
	if err != nil {
		return nil, err
	}

	decision.Remaining = quota.Remaining
	if !quota.Allowed {
		resetAt := quota.ResetAt
		decision.Kind = DecisionRateLimited
		decision.ResetAt = &resetAt
		return decision, nil
	}

	decision.Kind = DecisionAllowed
	return decision, nil
}
