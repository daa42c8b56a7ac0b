package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AccountHandler *AccountHandler
	CreditsHandler *CreditsHandler
	PaymentHandler *PaymentHandler
	WebhookHandler *WebhookHandler
	FeatureHandler *FeatureHandler
}
