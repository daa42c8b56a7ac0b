package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

const ProviderRazorpay = "razorpay"

// RazorpayGateway - заказы через Orders API, вебхуки подписаны HMAC-SHA256 тела
type RazorpayGateway struct {
	keyID         string
	webhookSecret string
	createOrder   func(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

func NewRazorpayGateway(keyID, keySecret, webhookSecret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayGateway{
		keyID:         keyID,
		webhookSecret: webhookSecret,
		createOrder:   client.Order.Create,
	}
}

func (g *RazorpayGateway) Name() string {
	return ProviderRazorpay
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		data["notes"] = req.Notes
	}

	body, err := call(ctx, func() (map[string]interface{}, error) {
		return g.createOrder(data, nil)
	})
	if err != nil {
		return nil, &Error{
			Provider: ProviderRazorpay,
			Op:       "create order",
			Diag:     map[string]interface{}{"reason": err.Error(), "receipt": req.Receipt},
			Err:      err,
		}
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, &Error{
			Provider: ProviderRazorpay,
			Op:       "create order",
			Diag:     body,
			Err:      errors.New("response has no order id"),
		}
	}

	resp := &OrderResponse{
		GatewayOrderID: id,
		Amount:         req.Amount,
		Currency:       req.Currency,
		ClientKey:      g.keyID,
	}
	if amount, ok := body["amount"].(float64); ok {
		resp.Amount = int64(amount)
	}
	if currency, ok := body["currency"].(string); ok && currency != "" {
		resp.Currency = currency
	}
	return resp, nil
}

type razorpayWebhook struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				Status           string `json:"status"`
				ErrorDescription string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// ParseWebhook проверяет X-Razorpay-Signature и нормализует событие
func (g *RazorpayGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if !VerifyPayloadSignature(g.webhookSecret, payload, signature) {
		return nil, ErrInvalidWebhookSignature
	}

	var hook razorpayWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return nil, fmt.Errorf("decode razorpay webhook: %w", err)
	}

	payment := hook.Payload.Payment.Entity
	event := &WebhookEvent{
		RawType:          hook.Event,
		GatewayOrderID:   payment.OrderID,
		GatewayPaymentID: payment.ID,
	}
	if event.GatewayOrderID == "" {
		event.GatewayOrderID = hook.Payload.Order.Entity.ID
	}

	switch hook.Event {
	case "payment.captured", "order.paid":
		event.Type = EventPaymentSucceeded
	case "payment.failed":
		event.Type = EventAttemptFailed
		event.Reason = payment.ErrorDescription
	default:
		event.Type = EventIgnored
	}
	return event, nil
}
