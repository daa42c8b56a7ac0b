package handlers

import (
	"net/http"

	"resumeai_backend/internal/dto"
	"resumeai_backend/internal/models"
	"resumeai_backend/internal/services"
	"resumeai_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	*BaseHandler
	orderService        services.OrderService
	verificationService services.VerificationService
}

func NewPaymentHandler(base *BaseHandler, orderService services.OrderService, verificationService services.VerificationService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:         base,
		orderService:        orderService,
		verificationService: verificationService,
	}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("/orders", h.CreateOrder)
		payments.GET("/orders", h.ListOrders)
		payments.POST("/verify", h.Verify)
	}
}

func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	accountID, ok := h.GetAccountID(c)
	if !ok {
		return
	}

	var req dto.CreateOrderRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.orderService.CreateOrder(c.Request.Context(), h.GetDB(c), accountID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *PaymentHandler) ListOrders(c *gin.Context) {
	accountID, ok := h.GetAccountID(c)
	if !ok {
		return
	}
	limit, offset := ParsePagination(c)

	orders, total, err := h.orderService.ListOrders(h.GetDB(c), accountID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse[models.PaymentOrder]{
		Items:  orders,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Verify - callback клиента после оплаты; подпись проверяет VerificationService
func (h *PaymentHandler) Verify(c *gin.Context) {
	if _, ok := h.GetAccountID(c); !ok {
		return
	}

	var req dto.VerifyPaymentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.verificationService.VerifyAndSettle(c.Request.Context(), h.GetDB(c),
		req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	// Подпись верна, но заказ уже закрыт как неуспешный
	if result.Status == models.OrderStatusFailed {
		h.HandleServiceError(c, apperrors.OrderFailed(result.GatewayOrderID, result.FailureReason))
		return
	}

	c.JSON(http.StatusOK, toSettlementResponse(result))
}

func toSettlementResponse(result *services.SettlementResult) *dto.SettlementResponse {
	return &dto.SettlementResponse{
		GatewayOrderID:   result.GatewayOrderID,
		Status:           result.Status,
		CreditsAdded:     result.CreditsAdded,
		NewBalance:       result.NewBalance,
		AlreadyProcessed: result.AlreadyProcessed,
	}
}
