package models

type PlanTag string
type SubscriptionStatus string
type OrderStatus string
type OrderPurpose string

const (
	PlanFree PlanTag = "free"
	PlanPaid PlanTag = "paid"

	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusInactive  SubscriptionStatus = "inactive"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"

	// Pending -> Settled | Failed, обратных переходов нет
	OrderStatusPending OrderStatus = "pending"
	OrderStatusSettled OrderStatus = "settled"
	OrderStatusFailed  OrderStatus = "failed"

	PurposeCredits       OrderPurpose = "credits"
	PurposeSubscription  OrderPurpose = "subscription"
	PurposeFeatureUnlock OrderPurpose = "feature_unlock"
)

func (p OrderPurpose) Valid() bool {
	switch p {
	case PurposeCredits, PurposeSubscription, PurposeFeatureUnlock:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusSettled || s == OrderStatusFailed
}
