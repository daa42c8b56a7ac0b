package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UsageRecord - неизменяемая запись о списании. Основа для дневного лимита.
type UsageRecord struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID  string         `gorm:"type:uuid;not null;index:idx_usage_account_action_created,priority:1" json:"account_id"`
	ActionKind string         `gorm:"type:varchar(64);not null;index:idx_usage_account_action_created,priority:2" json:"action_kind"`
	Amount     int64          `gorm:"not null" json:"amount"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;index:idx_usage_account_action_created,priority:3" json:"created_at"`

	Account *Account `gorm:"foreignKey:AccountID" json:"-"`
}

func (u *UsageRecord) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = tx.NowFunc()
	}
	return nil
}

// BeforeUpdate запрещает изменение журнала
func (u *UsageRecord) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableRecord
}

func (UsageRecord) TableName() string {
	return "usage_records"
}
