package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"resumeai_backend/internal/gateway"
)

// FakeGateway - шлюз в памяти. Вебхук: JSON WebhookEvent, подпись = SignPayload(secret, body).
type FakeGateway struct {
	WebhookSecret string
	Err           error

	mu       sync.Mutex
	seq      int
	Requests []gateway.OrderRequest
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{WebhookSecret: "fake-webhook-secret"}
}

func (g *FakeGateway) Name() string {
	return "fake"
}

func (g *FakeGateway) CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.OrderResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Requests = append(g.Requests, req)
	if g.Err != nil {
		return nil, g.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.seq++
	return &gateway.OrderResponse{
		GatewayOrderID: fmt.Sprintf("order_fake_%d", g.seq),
		Amount:         req.Amount,
		Currency:       req.Currency,
		ClientKey:      "fake_key",
	}, nil
}

func (g *FakeGateway) ParseWebhook(payload []byte, signature string) (*gateway.WebhookEvent, error) {
	if !gateway.VerifyPayloadSignature(g.WebhookSecret, payload, signature) {
		return nil, gateway.ErrInvalidWebhookSignature
	}
	var event gateway.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// WebhookBody собирает подписанное тело для FakeGateway.ParseWebhook
func (g *FakeGateway) WebhookBody(event gateway.WebhookEvent) ([]byte, string) {
	body, _ := json.Marshal(event)
	return body, gateway.SignPayload(g.WebhookSecret, body)
}
