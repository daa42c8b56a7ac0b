package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeai_backend/internal/models"
)

func TestReceiptNotifier_SendReceipt(t *testing.T) {
	provider := &NoopProvider{}
	notifier := NewReceiptNotifier(provider, nil)
	feature := "ats_report"

	err := notifier.SendReceipt(context.Background(),
		&models.Account{Email: "ann@example.com", Name: "Ann"},
		&models.PaymentOrder{
			Amount:         9900,
			Currency:       "INR",
			GatewayOrderID: "order_1",
			Receipt:        "rcpt_1",
			CreditsToGrant: 11,
			FeatureID:      &feature,
		})
	require.NoError(t, err)

	require.Len(t, provider.Sent, 1)
	sent := provider.Sent[0]
	assert.Equal(t, []string{"ann@example.com"}, sent.To)
	assert.Contains(t, sent.Subject, "rcpt_1")
	assert.Contains(t, sent.HTMLBody, "99.00 INR")
	assert.Contains(t, sent.HTMLBody, "Credits added: 11")
	assert.Contains(t, sent.HTMLBody, "Unlocked: ats_report")
}

func TestReceiptNotifier_SkipsWithoutEmail(t *testing.T) {
	provider := &NoopProvider{}

	err := NewReceiptNotifier(provider, nil).SendReceipt(context.Background(), &models.Account{}, &models.PaymentOrder{})
	require.NoError(t, err)
	assert.Empty(t, provider.Sent)
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "99.00", formatMinor(9900))
	assert.Equal(t, "0.05", formatMinor(5))
	assert.Equal(t, "12.34", formatMinor(1234))
}

func TestGomailProvider_Validate(t *testing.T) {
	assert.Error(t, NewGomailProvider(&SMTPConfig{Port: 587, FromEmail: "a@b.c"}).Validate())
	assert.Error(t, NewGomailProvider(&SMTPConfig{Host: "smtp", Port: 0, FromEmail: "a@b.c"}).Validate())
	assert.NoError(t, NewGomailProvider(&SMTPConfig{Host: "smtp", Port: 587, FromEmail: "a@b.c"}).Validate())
}
