package handlers

import (
	"net/http"
	"time"

	"resumeai_backend/internal/dto"
	"resumeai_backend/internal/models"
	"resumeai_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	*BaseHandler
	ledgerService services.LedgerService
}

func NewAccountHandler(base *BaseHandler, ledgerService services.LedgerService) *AccountHandler {
	return &AccountHandler{
		BaseHandler:   base,
		ledgerService: ledgerService,
	}
}

func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup) {
	account := r.Group("/account")
	{
		account.GET("", h.GetAccount)
		account.GET("/usage", h.GetUsage)
	}
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountID, ok := h.GetAccountID(c)
	if !ok {
		return
	}

	account, err := h.ledgerService.GetAccount(h.GetDB(c), accountID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(account, time.Now()))
}

func (h *AccountHandler) GetUsage(c *gin.Context) {
	accountID, ok := h.GetAccountID(c)
	if !ok {
		return
	}
	limit, offset := ParsePagination(c)

	records, total, err := h.ledgerService.UsageHistory(h.GetDB(c), accountID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse[models.UsageRecord]{
		Items:  records,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func toAccountResponse(account *models.Account, now time.Time) *dto.AccountResponse {
	return &dto.AccountResponse{
		ID:            account.ID,
		ExternalID:    account.ExternalID,
		Email:         account.Email,
		Balance:       account.Balance,
		Plan:          account.Plan,
		Status:        account.Status,
		PlanExpiresAt: account.PlanExpiresAt,
		Unlimited:     account.HasUnlimitedPlan(now),
	}
}
