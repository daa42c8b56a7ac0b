package services

import (
	"time"

	"resumeai_backend/internal/models"
	"resumeai_backend/pkg/apperrors"
)

// PricingPolicy определяет, что дает оплаченный заказ. Кредиты считаются на сервере.
type PricingPolicy struct {
	CreditUnitPrice     map[string]int64
	SubscriptionCredits int64
	SubscriptionDays    int
	UnlockDays          int
}

func (p PricingPolicy) CreditsFor(purpose models.OrderPurpose, amount int64, currency string) (int64, error) {
	if amount <= 0 {
		return 0, apperrors.ErrInvalidAmount
	}

	switch purpose {
	case models.PurposeCredits:
		unit, ok := p.CreditUnitPrice[currency]
		if !ok || unit <= 0 {
			return 0, apperrors.ErrInvalidAmount.WithDetails(map[string]string{
				"reason": "currency is not supported: " + currency,
			})
		}
		credits := amount / unit
		if credits == 0 {
			return 0, apperrors.ErrInvalidAmount.WithDetails(map[string]int64{
				"minimum_amount": unit,
			})
		}
		return credits, nil
	case models.PurposeSubscription:
		return p.SubscriptionCredits, nil
	case models.PurposeFeatureUnlock:
		return 0, nil
	}
	return 0, apperrors.NewBadRequestError("unknown order purpose")
}

// PlanExpiry продлевает подписку от текущей даты окончания, если она в будущем
func (p PricingPolicy) PlanExpiry(current *time.Time, now time.Time) time.Time {
	base := now
	if current != nil && current.After(now) {
		base = *current
	}
	return base.AddDate(0, 0, p.SubscriptionDays)
}

// UnlockExpiry - nil означает бессрочную разблокировку
func (p PricingPolicy) UnlockExpiry(now time.Time) *time.Time {
	if p.UnlockDays <= 0 {
		return nil
	}
	expiresAt := now.AddDate(0, 0, p.UnlockDays).UTC()
	return &expiresAt
}
