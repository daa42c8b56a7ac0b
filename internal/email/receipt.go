package email

import (
	"context"
	"fmt"
	"strconv"

	"resumeai_backend/internal/models"
)

// ReceiptNotifier отправляет квитанцию после расчета заказа
type ReceiptNotifier struct {
	provider  Provider
	templates *TemplateManager
}

func NewReceiptNotifier(provider Provider, templates *TemplateManager) *ReceiptNotifier {
	if templates == nil {
		templates = NewTemplateManager()
	}
	return &ReceiptNotifier{provider: provider, templates: templates}
}

func (n *ReceiptNotifier) SendReceipt(ctx context.Context, account *models.Account, order *models.PaymentOrder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if account.Email == "" {
		return nil
	}

	data := TemplateData{
		"Name":     account.Name,
		"Amount":   formatMinor(order.Amount),
		"Currency": order.Currency,
		"OrderID":  order.GatewayOrderID,
		"Receipt":  order.Receipt,
		"Credits":  order.CreditsToGrant,
	}
	if order.FeatureID != nil {
		data["Feature"] = *order.FeatureID
	}

	html, err := n.templates.Render("payment_receipt", data)
	if err != nil {
		return err
	}

	return n.provider.Send(&Email{
		To:       []string{account.Email},
		Subject:  fmt.Sprintf("Payment receipt %s", order.Receipt),
		HTMLBody: html,
	})
}

// formatMinor: 9900 -> "99.00"
func formatMinor(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := amount % 100
	return sign + strconv.FormatInt(amount/100, 10) + "." + fmt.Sprintf("%02d", cents)
}
