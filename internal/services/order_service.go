package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"resumeai_backend/internal/dto"
	"resumeai_backend/internal/gateway"
	"resumeai_backend/internal/logger"
	"resumeai_backend/internal/models"
	"resumeai_backend/internal/repositories"
	"resumeai_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderService создает заказ в шлюзе и сохраняет его как pending
type OrderService interface {
	CreateOrder(ctx context.Context, db *gorm.DB, accountID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	ListOrders(db *gorm.DB, accountID string, limit, offset int) ([]models.PaymentOrder, int64, error)
}

type orderService struct {
	ledgerRepo repositories.LedgerRepository
	orderRepo  repositories.PaymentOrderRepository
	gw         gateway.Gateway
	pricing    PricingPolicy
	timeout    time.Duration
	exposeDiag bool
	now        Clock
}

type OrderServiceConfig struct {
	Pricing        PricingPolicy
	GatewayTimeout time.Duration
	// ExposeGatewayDiagnostics - отдавать клиенту ответ шлюза (не для production)
	ExposeGatewayDiagnostics bool
}

func NewOrderService(
	ledgerRepo repositories.LedgerRepository,
	orderRepo repositories.PaymentOrderRepository,
	gw gateway.Gateway,
	cfg OrderServiceConfig,
	now Clock,
) OrderService {
	if now == nil {
		now = systemClock
	}
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = 10 * time.Second
	}
	return &orderService{
		ledgerRepo: ledgerRepo,
		orderRepo:  orderRepo,
		gw:         gw,
		pricing:    cfg.Pricing,
		timeout:    cfg.GatewayTimeout,
		exposeDiag: cfg.ExposeGatewayDiagnostics,
		now:        now,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, db *gorm.DB, accountID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if req.Amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	currency := strings.ToUpper(req.Currency)

	credits, err := s.pricing.CreditsFor(req.Purpose, req.Amount, currency)
	if err != nil {
		return nil, err
	}

	var featureID, resumeID *string
	if req.Purpose == models.PurposeFeatureUnlock {
		id := strings.TrimSpace(req.Metadata["feature_id"])
		if id == "" {
			return nil, apperrors.ValidationError(map[string]string{"metadata.feature_id": "This field is required"})
		}
		featureID = &id
		if r := strings.TrimSpace(req.Metadata["resume_id"]); r != "" {
			resumeID = &r
		}
	}

	if _, err := s.ledgerRepo.FindByID(db, accountID); err != nil {
		return nil, mapRepoError(err)
	}

	now := s.now()
	receipt := gateway.BuildReceipt(accountID, now)

	gwCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	gwOrder, err := s.gw.CreateOrder(gwCtx, gateway.OrderRequest{
		Amount:   req.Amount,
		Currency: currency,
		Receipt:  receipt,
		Notes: map[string]string{
			"account_id": accountID,
			"purpose":    string(req.Purpose),
		},
	})
	if err != nil {
		logger.CtxWithError(ctx, "gateway order creation failed", err,
			"provider", s.gw.Name(), "receipt", receipt, "amount", req.Amount)
		return nil, apperrors.GatewayError(err, s.diagnostics(err))
	}

	var metadata datatypes.JSON
	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		metadata = raw
	}

	order := &models.PaymentOrder{
		AccountID:      accountID,
		Provider:       s.gw.Name(),
		Purpose:        req.Purpose,
		Amount:         req.Amount,
		Currency:       currency,
		GatewayOrderID: gwOrder.GatewayOrderID,
		Status:         models.OrderStatusPending,
		CreditsToGrant: credits,
		Receipt:        receipt,
		FeatureID:      featureID,
		ResumeID:       resumeID,
		Metadata:       metadata,
	}
	if err := s.orderRepo.Create(db, order); err != nil {
		// заказ в шлюзе останется без строки и никогда не будет рассчитан
		logger.CtxWithError(ctx, "failed to persist payment order", err,
			"gateway_order_id", gwOrder.GatewayOrderID)
		if errors.Is(err, repositories.ErrDuplicateOrder) {
			return nil, apperrors.GatewayError(err, nil)
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "payment order created",
		"gateway_order_id", order.GatewayOrderID,
		"purpose", order.Purpose,
		"amount", order.Amount,
		"credits", order.CreditsToGrant,
	)

	return &dto.CreateOrderResponse{
		OrderID:        order.ID,
		GatewayOrderID: order.GatewayOrderID,
		ClientKey:      gwOrder.ClientKey,
		Provider:       order.Provider,
		Amount:         order.Amount,
		Currency:       order.Currency,
		Purpose:        order.Purpose,
		Credits:        order.CreditsToGrant,
		Receipt:        order.Receipt,
	}, nil
}

func (s *orderService) diagnostics(err error) interface{} {
	if !s.exposeDiag {
		return nil
	}
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && gwErr.Diag != nil {
		return gwErr.Diag
	}
	return map[string]string{"reason": err.Error()}
}

func (s *orderService) ListOrders(db *gorm.DB, accountID string, limit, offset int) ([]models.PaymentOrder, int64, error) {
	limit, offset = clampPage(limit, offset)
	orders, total, err := s.orderRepo.ListByAccount(db, accountID, limit, offset)
	if err != nil {
		return nil, 0, mapRepoError(err)
	}
	return orders, total, nil
}
