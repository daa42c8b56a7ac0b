package models

import "time"

// Account - пользователь с балансом кредитов и состоянием подписки.
// Баланс меняется только через debit/credit хранилища леджера.
type Account struct {
	BaseModel
	ExternalID    string             `gorm:"type:varchar(255);uniqueIndex;not null" json:"external_id"`
	Email         string             `gorm:"type:varchar(255)" json:"email,omitempty"`
	Name          string             `gorm:"type:varchar(255)" json:"name,omitempty"`
	Balance       int64              `gorm:"not null;default:0;check:chk_accounts_balance_non_negative,balance >= 0" json:"balance"`
	Plan          PlanTag            `gorm:"type:varchar(20);not null;default:'free'" json:"plan"`
	Status        SubscriptionStatus `gorm:"type:varchar(20);not null;default:'inactive'" json:"status"`
	PlanExpiresAt *time.Time         `json:"plan_expires_at,omitempty"`
}

// HasUnlimitedPlan - платный активный план, не истекший к моменту now
func (a *Account) HasUnlimitedPlan(now time.Time) bool {
	if a.Plan != PlanPaid || a.Status != SubscriptionStatusActive {
		return false
	}
	return a.PlanExpiresAt == nil || a.PlanExpiresAt.After(now)
}
