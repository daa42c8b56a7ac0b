package handlers

import (
	"net/http"
	"time"

	"resumeai_backend/internal/dto"
	"resumeai_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type CreditsHandler struct {
	*BaseHandler
	ledgerService     services.LedgerService
	rateLimiter       services.RateLimiter
	creditGuard       services.CreditGuard
	paidActionService services.PaidActionService
}

func NewCreditsHandler(
	base *BaseHandler,
	ledgerService services.LedgerService,
	rateLimiter services.RateLimiter,
	creditGuard services.CreditGuard,
	paidActionService services.PaidActionService,
) *CreditsHandler {
	return &CreditsHandler{
		BaseHandler:       base,
		ledgerService:     ledgerService,
		rateLimiter:       rateLimiter,
		creditGuard:       creditGuard,
		paidActionService: paidActionService,
	}
}

func (h *CreditsHandler) RegisterRoutes(r *gin.RouterGroup) {
	credits := r.Group("/credits")
	{
		credits.POST("/authorize", h.Authorize)
		credits.GET("/quota", h.GetQuota)
		credits.POST("/spend", h.Spend)
	}
}

// Authorize - предварительная проверка. Отказ по балансу или лимиту - это 200 с allowed=false.
func (h *CreditsHandler) Authorize(c *gin.Context) {
	accountID, ok := h.GetAccountID(c)
	if !ok {
		return
	}

	var req dto.AuthorizeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	decision, err := h.creditGuard.Authorize(h.GetDB(c), accountID, req.Credits, req.ActionKind)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"allowed":  decision.Allowed(),
		"decision": decision,
		"reason":   decision.Err(time.Now()),
	})
}

func (h *CreditsHandler) GetQuota(c *gin.Context) {
	accountID, ok := h.GetAccountID(c)
	if !ok {
		return
	}

	var query dto.QuotaQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	db := h.GetDB(c)
	account, err := h.ledgerService.GetAccount(db, accountID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	status, err := h.rateLimiter.CheckDailyQuota(db, accountID, query.ActionKind, account.HasUnlimitedPlan(time.Now()))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuotaResponse{
		Allowed:   status.Allowed,
		Remaining: status.Remaining,
		ResetAt:   status.ResetAt,
	})
}

func (h *CreditsHandler) Spend(c *gin.Context) {
	accountID, ok := h.GetAccountID(c)
	if !ok {
		return
	}

	var req dto.SpendRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.paidActionService.Run(c.Request.Context(), h.GetDB(c), accountID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
