package gateway

import (
	"context"
	"errors"
	"fmt"
)

// EventType - нормализованный тип события вебхука
type EventType string

const (
	EventPaymentSucceeded EventType = "payment.succeeded"
	// EventAttemptFailed - отклонена одна попытка, заказ остается открытым для повторной оплаты
	EventAttemptFailed    EventType = "payment.attempt_failed"
	// EventOrderCanceled - заказ закрыт на стороне шлюза, оплатить его уже нельзя
	EventOrderCanceled    EventType = "order.canceled"
	EventIgnored          EventType = "ignored"
)

var ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type OrderResponse struct {
	GatewayOrderID string
	Amount         int64
	Currency       string
	// ClientKey - то, что нужно клиенту для открытия checkout
	ClientKey string
}

type WebhookEvent struct {
	ID               string
	Type             EventType
	RawType          string
	GatewayOrderID   string
	GatewayPaymentID string
	Reason           string
}

// Gateway - контракт внешнего платежного шлюза
type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// Error - отказ шлюза с диагностикой от самого провайдера
type Error struct {
	Provider string
	Op       string
	Diag     map[string]interface{}
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// call выполняет блокирующий вызов SDK с учетом дедлайна ctx
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}

	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.val, r.err
	}
}
