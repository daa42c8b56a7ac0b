package models

import "time"

// FeatureUnlock - доступ к фиче вне зависимости от баланса. nil ExpiresAt = бессрочно.
type FeatureUnlock struct {
	BaseModel
	AccountID string     `gorm:"type:uuid;not null;index:idx_unlock_account_feature,priority:1" json:"account_id"`
	FeatureID string     `gorm:"type:varchar(100);not null;index:idx_unlock_account_feature,priority:2" json:"feature_id"`
	ResumeID  *string    `gorm:"type:varchar(100)" json:"resume_id,omitempty"`
	OrderID   *string    `gorm:"type:uuid;uniqueIndex" json:"order_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	Account *Account `gorm:"foreignKey:AccountID" json:"-"`
}

func (f *FeatureUnlock) ActiveAt(now time.Time) bool {
	return f.ExpiresAt == nil || f.ExpiresAt.After(now)
}
