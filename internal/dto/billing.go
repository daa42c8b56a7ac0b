package dto

import (
	"time"

	"resumeai_backend/internal/models"
)

type AccountResponse struct {
	ID            string                    `json:"id"`
	ExternalID    string                    `json:"external_id"`
	Email         string                    `json:"email,omitempty"`
	Balance       int64                     `json:"balance"`
	Plan          models.PlanTag            `json:"plan"`
	Status        models.SubscriptionStatus `json:"status"`
	PlanExpiresAt *time.Time                `json:"plan_expires_at,omitempty"`
	Unlimited     bool                      `json:"unlimited"`
}

type AuthorizeRequest struct {
	Credits    int64  `json:"credits" validate:"lte=100"`
	ActionKind string `json:"action_kind" validate:"required,is-action-kind"`
}

type QuotaQuery struct {
	ActionKind string `form:"action_kind" json:"action_kind" validate:"required,is-action-kind"`
}

type QuotaResponse struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"` // -1 = без ограничений
	ResetAt   time.Time `json:"reset_at"`
}

type SpendRequest struct {
	Credits    int64  `json:"credits" validate:"lte=100"`
	ActionKind string `json:"action_kind" validate:"required,is-action-kind"`
	Input      string `json:"input" validate:"required,max=20000"`
}

type SpendResponse struct {
	Output       string `json:"output"`
	CreditsSpent int64  `json:"credits_spent"`
	Balance      int64  `json:"balance"`
}

type CreateOrderRequest struct {
	Amount   int64               `json:"amount"`
	Currency string              `json:"currency" validate:"required,is-currency"`
	Purpose  models.OrderPurpose `json:"purpose" validate:"required,is-order-purpose"`
	Metadata map[string]string   `json:"metadata" validate:"omitempty,max=20"`
}

type CreateOrderResponse struct {
	OrderID        string              `json:"order_id"`
	GatewayOrderID string              `json:"gateway_order_id"`
	ClientKey      string              `json:"client_key"`
	Provider       string              `json:"provider"`
	Amount         int64               `json:"amount"`
	Currency       string              `json:"currency"`
	Purpose        models.OrderPurpose `json:"purpose"`
	Credits        int64               `json:"credits"`
	Receipt        string              `json:"receipt"`
}

type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" validate:"required,max=255"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required,max=255"`
	Signature        string `json:"signature" validate:"required,max=512"`
}

type SettlementResponse struct {
	GatewayOrderID   string             `json:"gateway_order_id"`
	Status           models.OrderStatus `json:"status"`
	CreditsAdded     int64              `json:"credits_added"`
	NewBalance       int64              `json:"new_balance"`
	AlreadyProcessed bool               `json:"already_processed"`
}

type FeatureAccessResponse struct {
	FeatureID string `json:"feature_id"`
	Unlocked  bool   `json:"unlocked"`
}

type ListResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
