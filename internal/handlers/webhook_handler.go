package handlers

import (
	"io"
	"net/http"

	"resumeai_backend/internal/logger"
	"resumeai_backend/internal/services"
	"resumeai_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

// Заголовки подписи поддерживаемых шлюзов
var webhookSignatureHeaders = []string{
	"X-Razorpay-Signature",
	"Stripe-Signature",
	"X-Webhook-Signature",
}

type WebhookHandler struct {
	*BaseHandler
	verificationService services.VerificationService
}

func NewWebhookHandler(base *BaseHandler, verificationService services.VerificationService) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:         base,
		verificationService: verificationService,
	}
}

// RegisterRoutes - без авторизации, подлинность проверяется подписью тела
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhooks/payments", h.HandlePayment)
}

func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	ctx := c.Request.Context()

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Cannot read webhook body"))
		return
	}

	outcome, err := h.verificationService.HandleWebhook(ctx, h.GetDB(c), payload, signatureHeader(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	logger.CtxInfo(ctx, "webhook processed",
		"event", outcome.EventType,
		"gateway_order_id", outcome.GatewayOrderID,
		"ignored", outcome.Ignored,
	)

	resp := gin.H{"received": true, "ignored": outcome.Ignored}
	if outcome.Result != nil {
		resp["settlement"] = toSettlementResponse(outcome.Result)
	}
	c.JSON(http.StatusOK, resp)
}

func signatureHeader(c *gin.Context) string {
	for _, name := range webhookSignatureHeaders {
		if value := c.GetHeader(name); value != "" {
			return value
		}
	}
	return ""
}
