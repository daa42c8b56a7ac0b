package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"resumeai_backend/database"
	"resumeai_backend/internal/config"
	"resumeai_backend/internal/email"
	"resumeai_backend/internal/gateway"
	"resumeai_backend/internal/generation"
	"resumeai_backend/internal/handlers"
	"resumeai_backend/internal/logger"
	"resumeai_backend/internal/middleware"
	"resumeai_backend/internal/repositories"
	"resumeai_backend/internal/routes"
	"resumeai_backend/internal/services"
	"resumeai_backend/internal/validator"
	"resumeai_backend/internal/workers"
	"resumeai_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Repositories - общие для HTTP, воркера и CLI
type Repositories struct {
	Ledger  repositories.LedgerRepository
	Usage   repositories.UsageRepository
	Orders  repositories.PaymentOrderRepository
	Unlocks repositories.FeatureUnlockRepository
}

type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Repos    *Repositories
	Services *services.ServiceContainer
	Router   *gin.Engine
	Worker   *workers.BillingWorker
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	application, err := New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize application", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application.Worker.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", address, "provider", cfg.Payment.Provider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown error")
	}
	if sqlDB, err := application.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// New собирает приложение: БД с миграциями, сервисы, хэндлеры, роутер и воркер
func New(cfg *config.Config) (*App, error) {
	apperrors.Debug = !cfg.IsProduction()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}

	gw, err := newGateway(cfg)
	if err != nil {
		return nil, err
	}

	repos := NewRepositories()
	serviceContainer := initializeServices(cfg, repos, gw, newEmailProvider(cfg), newGenerator(cfg))
	appHandlers := initializeHandlers(serviceContainer)

	router := initializeGinRouter(db)
	auth := middleware.AuthMiddleware(middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}, serviceContainer.LedgerService)
	routes.RegisterRoutes(router, appHandlers, auth)

	return &App{
		Config:   cfg,
		DB:       db,
		Repos:    repos,
		Services: serviceContainer,
		Router:   router,
		Worker:   NewBillingWorker(cfg, db, repos),
	}, nil
}

// OpenDatabase подключается к БД и применяет миграции
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("Database connected")
	return db, nil
}

func NewBillingWorker(cfg *config.Config, db *gorm.DB, repos *Repositories) *workers.BillingWorker {
	return workers.NewBillingWorker(db, repos.Ledger, repos.Orders, cfg.Workers.SweepInterval, cfg.Billing.PendingOrderTTL)
}

func NewRepositories() *Repositories {
	return &Repositories{
		Ledger:  repositories.NewLedgerRepository(),
		Usage:   repositories.NewUsageRepository(),
		Orders:  repositories.NewPaymentOrderRepository(),
		Unlocks: repositories.NewFeatureUnlockRepository(),
	}
}

func newGateway(cfg *config.Config) (gateway.Gateway, error) {
	switch cfg.Payment.Provider {
	case gateway.ProviderRazorpay:
		return gateway.NewRazorpayGateway(cfg.Payment.KeyID, cfg.Payment.KeySecret, cfg.Payment.WebhookSecret), nil
	case gateway.ProviderStripe:
		return gateway.NewStripeGateway(cfg.Payment.StripeSecretKey, cfg.Payment.StripeWebhookSecret), nil
	}
	return nil, fmt.Errorf("unknown payment provider %q", cfg.Payment.Provider)
}

func newEmailProvider(cfg *config.Config) email.Provider {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP is not configured, receipts are not sent")
		return &email.NoopProvider{}
	}
	return email.NewGomailProvider(&email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	})
}

func newGenerator(cfg *config.Config) generation.Generator {
	if cfg.Generation.APIKey == "" {
		logger.Warn("Generation API key is not set, using echo generator")
		return generation.EchoGenerator{}
	}
	return generation.NewOpenAIGenerator(cfg.Generation.Endpoint, cfg.Generation.APIKey, cfg.Generation.Model, cfg.Generation.Timeout)
}

func initializeServices(
	cfg *config.Config,
	repos *Repositories,
	gw gateway.Gateway,
	emailProvider email.Provider,
	generator generation.Generator,
) *services.ServiceContainer {
	pricing := services.PricingPolicy{
		CreditUnitPrice:     cfg.Billing.CreditUnitPrice,
		SubscriptionCredits: int64(cfg.Billing.SubscriptionCredits),
		SubscriptionDays:    cfg.Billing.SubscriptionDays,
		UnlockDays:          cfg.Billing.UnlockDays,
	}
	retries := cfg.Billing.ConflictRetries

	ledgerService := services.NewLedgerService(repos.Ledger, repos.Usage, cfg.Billing.StartingBalance(), retries, nil)
	rateLimiter := services.NewRateLimiter(repos.Usage, cfg.Billing.FreeDailyLimit, cfg.Billing.Location(), nil)
	creditGuard := services.NewCreditGuard(repos.Ledger, rateLimiter, nil)
	orderService := services.NewOrderService(repos.Ledger, repos.Orders, gw, services.OrderServiceConfig{
		Pricing:                  pricing,
		GatewayTimeout:           cfg.Payment.Timeout,
		ExposeGatewayDiagnostics: !cfg.IsProduction(),
	}, nil)
	verificationService := services.NewVerificationService(repos.Ledger, repos.Orders, repos.Unlocks, gw,
		email.NewReceiptNotifier(emailProvider, email.NewTemplateManager()),
		services.VerificationServiceConfig{
			SigningSecret: cfg.Payment.KeySecret,
			Pricing:       pricing,
			Retries:       retries,
		}, nil)

	return &services.ServiceContainer{
		LedgerService:       ledgerService,
		RateLimiter:         rateLimiter,
		CreditGuard:         creditGuard,
		OrderService:        orderService,
		VerificationService: verificationService,
		UnlockResolver:      services.NewUnlockResolver(repos.Ledger, repos.Unlocks, nil),
		PaidActionService:   services.NewPaidActionService(creditGuard, ledgerService, generator, nil),
	}
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		AccountHandler: handlers.NewAccountHandler(baseHandler, services.LedgerService),
		CreditsHandler: handlers.NewCreditsHandler(baseHandler, services.LedgerService, services.RateLimiter,
			services.CreditGuard, services.PaidActionService),
		PaymentHandler: handlers.NewPaymentHandler(baseHandler, services.OrderService, services.VerificationService),
		WebhookHandler: handlers.NewWebhookHandler(baseHandler, services.VerificationService),
		FeatureHandler: handlers.NewFeatureHandler(baseHandler, services.UnlockResolver),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}
