package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

const ProviderStripe = "stripe"

// StripeGateway - "заказ" это PaymentIntent, клиенту отдается client_secret
type StripeGateway struct {
	webhookSecret string
	newIntent     func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{
		webhookSecret: webhookSecret,
		newIntent:     paymentintent.New,
	}
}

func (g *StripeGateway) Name() string {
	return ProviderStripe
}

func (g *StripeGateway) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.Receipt)
	params.AddMetadata("receipt", req.Receipt)
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}

	intent, err := call(ctx, func() (*stripe.PaymentIntent, error) {
		return g.newIntent(params)
	})
	if err != nil {
		diag := map[string]interface{}{"reason": err.Error()}
		if stripeErr, ok := err.(*stripe.Error); ok {
			diag["type"] = stripeErr.Type
			diag["code"] = stripeErr.Code
			diag["request_id"] = stripeErr.RequestID
		}
		return nil, &Error{Provider: ProviderStripe, Op: "create payment intent", Diag: diag, Err: err}
	}

	return &OrderResponse{
		GatewayOrderID: intent.ID,
		Amount:         intent.Amount,
		Currency:       strings.ToUpper(string(intent.Currency)),
		ClientKey:      intent.ClientSecret,
	}, nil
}

// ParseWebhook проверяет заголовок Stripe-Signature
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhookSignature, err)
	}

	result := &WebhookEvent{ID: event.ID, RawType: string(event.Type), Type: EventIgnored}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled":
	default:
		return result, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}

	result.GatewayOrderID = intent.ID
	result.GatewayPaymentID = intent.ID
	if intent.LatestCharge != nil && intent.LatestCharge.ID != "" {
		result.GatewayPaymentID = intent.LatestCharge.ID
	}

	switch event.Type {
	case "payment_intent.succeeded":
		result.Type = EventPaymentSucceeded
	case "payment_intent.canceled":
		result.Type = EventOrderCanceled
		result.Reason = "canceled"
		if intent.CancellationReason != "" {
			result.Reason = "canceled: " + string(intent.CancellationReason)
		}
	default:
		result.Type = EventAttemptFailed
		if intent.LastPaymentError != nil {
			result.Reason = intent.LastPaymentError.Msg
		}
	}
	return result, nil
}
