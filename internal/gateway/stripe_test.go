package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

func signedStripePayload(t *testing.T, secret string, payload []byte) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: secret})
	return signed.Header
}

func TestStripe_CreateOrder(t *testing.T) {
	var got *stripe.PaymentIntentParams
	g := &StripeGateway{
		webhookSecret: "whsec_test",
		newIntent: func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
			got = params
			return &stripe.PaymentIntent{ID: "pi_123", Amount: 1500, Currency: "usd", ClientSecret: "pi_123_secret"}, nil
		},
	}

	resp, err := g.CreateOrder(context.Background(), OrderRequest{Amount: 1500, Currency: "USD", Receipt: "rcpt_x"})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", resp.GatewayOrderID)
	assert.Equal(t, "pi_123_secret", resp.ClientKey)
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, "usd", *got.Currency)
	assert.Equal(t, "rcpt_x", got.Metadata["receipt"])
}

func TestStripe_ParseWebhook(t *testing.T) {
	g := &StripeGateway{webhookSecret: "whsec_test"}

	payload := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","object":"payment_intent","latest_charge":"ch_1"}}}`)
	event, err := g.ParseWebhook(payload, signedStripePayload(t, "whsec_test", payload))
	require.NoError(t, err)

	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, "pi_1", event.GatewayOrderID)
	assert.Equal(t, "ch_1", event.GatewayPaymentID)
}

func TestStripe_ParseWebhook_Failures(t *testing.T) {
	g := &StripeGateway{webhookSecret: "whsec_test"}

	failed := []byte(`{"id":"evt_4","object":"event","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_2","object":"payment_intent","last_payment_error":{"message":"card declined"}}}}`)
	event, err := g.ParseWebhook(failed, signedStripePayload(t, "whsec_test", failed))
	require.NoError(t, err)
	assert.Equal(t, EventAttemptFailed, event.Type)
	assert.Equal(t, "pi_2", event.GatewayOrderID)
	assert.Equal(t, "card declined", event.Reason)

	canceled := []byte(`{"id":"evt_5","object":"event","type":"payment_intent.canceled","data":{"object":{"id":"pi_2","object":"payment_intent","cancellation_reason":"abandoned"}}}`)
	event, err = g.ParseWebhook(canceled, signedStripePayload(t, "whsec_test", canceled))
	require.NoError(t, err)
	assert.Equal(t, EventOrderCanceled, event.Type)
	assert.Equal(t, "canceled: abandoned", event.Reason)
}

func TestStripe_ParseWebhook_IgnoresOtherEvents(t *testing.T) {
	g := &StripeGateway{webhookSecret: "whsec_test"}

	payload := []byte(`{"id":"evt_2","object":"event","type":"customer.created","data":{"object":{"id":"cus_1","object":"customer"}}}`)
	event, err := g.ParseWebhook(payload, signedStripePayload(t, "whsec_test", payload))
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, event.Type)
}

func TestStripe_ParseWebhook_BadSignature(t *testing.T) {
	g := &StripeGateway{webhookSecret: "whsec_test"}
	payload := []byte(`{"id":"evt_3","object":"event","type":"payment_intent.succeeded","data":{"object":{}}}`)

	_, err := g.ParseWebhook(payload, signedStripePayload(t, "whsec_other", payload))
	assert.ErrorIs(t, err, ErrInvalidWebhookSignature)
}
