package handlers

import (
	"net/http"

	"resumeai_backend/internal/dto"
	"resumeai_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type FeatureHandler struct {
	*BaseHandler
	unlockResolver services.UnlockResolver
}

func NewFeatureHandler(base *BaseHandler, unlockResolver services.UnlockResolver) *FeatureHandler {
	return &FeatureHandler{
		BaseHandler:    base,
		unlockResolver: unlockResolver,
	}
}

func (h *FeatureHandler) RegisterRoutes(r *gin.RouterGroup) {
	features := r.Group("/features")
	{
		features.GET("", h.ListUnlocks)
		features.GET("/:feature_id", h.GetAccess)
	}
}

func (h *FeatureHandler) GetAccess(c *gin.Context) {
	accountID, ok := h.GetAccountID(c)
	if !ok {
		return
	}
	featureID := c.Param("feature_id")

	unlocked, err := h.unlockResolver.IsUnlocked(h.GetDB(c), accountID, featureID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FeatureAccessResponse{FeatureID: featureID, Unlocked: unlocked})
}

func (h *FeatureHandler) ListUnlocks(c *gin.Context) {
	accountID, ok := h.GetAccountID(c)
	if !ok {
		return
	}

	unlocks, err := h.unlockResolver.ActiveUnlocks(h.GetDB(c), accountID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unlocks": unlocks, "total": len(unlocks)})
}
