package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

var ErrImmutableRecord = errors.New("record is immutable")

// PaymentOrder - одна попытка покупки. Никогда не удаляется.
type PaymentOrder struct {
	BaseModel
	AccountID        string         `gorm:"type:uuid;not null;index" json:"account_id"`
	Provider         string         `gorm:"type:varchar(20);not null" json:"provider"`
	Purpose          OrderPurpose   `gorm:"type:varchar(32);not null" json:"purpose"`
	Amount           int64          `gorm:"not null;check:chk_payment_orders_amount_positive,amount > 0" json:"amount"`
	Currency         string         `gorm:"type:varchar(3);not null" json:"currency"`
	GatewayOrderID   string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"gateway_order_id"`
	GatewayPaymentID *string        `gorm:"type:varchar(255)" json:"gateway_payment_id,omitempty"`
	Status           OrderStatus    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreditsToGrant   int64          `gorm:"not null;default:0" json:"credits_to_grant"`
	Receipt          string         `gorm:"type:varchar(40);not null" json:"receipt"`
	FeatureID        *string        `gorm:"type:varchar(100)" json:"feature_id,omitempty"`
	ResumeID         *string        `gorm:"type:varchar(100)" json:"resume_id,omitempty"`
	Metadata         datatypes.JSON `json:"metadata,omitempty"`
	FailureReason    string         `gorm:"type:varchar(255)" json:"failure_reason,omitempty"`
	SettledAt        *time.Time     `json:"settled_at,omitempty"`

	Account *Account `gorm:"foreignKey:AccountID" json:"-"`
}
