package routes

import (
	"net/http"

	"resumeai_backend/internal/handlers"
	"resumeai_backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
// auth - AuthMiddleware, уже привязанный к LedgerService.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	auth gin.HandlerFunc,
) {
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := ginRouter.Group("/api/v1")

	// Вебхуки шлюза - без авторизации
	appHandlers.WebhookHandler.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(auth)
	{
		appHandlers.AccountHandler.RegisterRoutes(protected)
		appHandlers.CreditsHandler.RegisterRoutes(protected)
		appHandlers.PaymentHandler.RegisterRoutes(protected)
		appHandlers.FeatureHandler.RegisterRoutes(protected)
	}

	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
