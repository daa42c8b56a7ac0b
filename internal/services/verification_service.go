package services

import (
	"context"
	"errors"
	"time"

	"resumeai_backend/internal/gateway"
	"resumeai_backend/internal/logger"
	"resumeai_backend/internal/models"
	"resumeai_backend/internal/repositories"
	"resumeai_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// SettlementResult - исход расчета. AlreadyProcessed = заказ был терминальным до вызова.
type SettlementResult struct {
	GatewayOrderID   string
	Status           models.OrderStatus
	CreditsAdded     int64
	NewBalance       int64
	AlreadyProcessed bool
	FailureReason    string
}

type WebhookOutcome struct {
	EventType      gateway.EventType
	GatewayOrderID string
	Result         *SettlementResult
	Ignored        bool
}

// ReceiptNotifier уведомляет покупателя после расчета
type ReceiptNotifier interface {
	SendReceipt(ctx context.Context, account *models.Account, order *models.PaymentOrder) error
}

// VerificationService - граница доверия: подпись -> расчет заказа ровно один раз
type VerificationService interface {
	VerifyAndSettle(ctx context.Context, db *gorm.DB, gatewayOrderID, gatewayPaymentID, signature string) (*SettlementResult, error)
	HandleWebhook(ctx context.Context, db *gorm.DB, payload []byte, signature string) (*WebhookOutcome, error)
	MarkFailed(ctx context.Context, db *gorm.DB, gatewayOrderID, reason string) (*SettlementResult, error)
}

type verificationService struct {
	ledgerRepo repositories.LedgerRepository
	orderRepo  repositories.PaymentOrderRepository
	unlockRepo repositories.FeatureUnlockRepository
	gw         gateway.Gateway
	notifier   ReceiptNotifier
	pricing    PricingPolicy
	secret     string
	retries    int
	now        Clock
}

type VerificationServiceConfig struct {
	// SigningSecret - общий секрет HMAC над "orderId|paymentId"
	SigningSecret string
	Pricing       PricingPolicy
	Retries       int
}

func NewVerificationService(
	ledgerRepo repositories.LedgerRepository,
	orderRepo repositories.PaymentOrderRepository,
	unlockRepo repositories.FeatureUnlockRepository,
	gw gateway.Gateway,
	notifier ReceiptNotifier,
	cfg VerificationServiceConfig,
	now Clock,
) VerificationService {
	if now == nil {
		now = systemClock
	}
	return &verificationService{
		ledgerRepo: ledgerRepo,
		orderRepo:  orderRepo,
		unlockRepo: unlockRepo,
		gw:         gw,
		notifier:   notifier,
		pricing:    cfg.Pricing,
		secret:     cfg.SigningSecret,
		retries:    cfg.Retries,
		now:        now,
	}
}

func (s *verificationService) VerifyAndSettle(ctx context.Context, db *gorm.DB, gatewayOrderID, gatewayPaymentID, signature string) (*SettlementResult, error) {
	// Подпись проверяется до любого обращения к БД
	if !gateway.VerifyPaymentSignature(s.secret, gatewayOrderID, gatewayPaymentID, signature) {
		logger.CtxWarn(ctx, "payment signature mismatch",
			"gateway_order_id", gatewayOrderID, "gateway_payment_id", gatewayPaymentID)
		return nil, apperrors.ErrInvalidSignature
	}
	return s.settle(ctx, db, gatewayOrderID, gatewayPaymentID, "callback")
}

func (s *verificationService) HandleWebhook(ctx context.Context, db *gorm.DB, payload []byte, signature string) (*WebhookOutcome, error) {
	event, err := s.gw.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidWebhookSignature) {
			logger.CtxWarn(ctx, "webhook signature rejected", "provider", s.gw.Name())
			return nil, apperrors.ErrInvalidSignature.WithError(err)
		}
		return nil, apperrors.NewBadRequestError("malformed webhook payload")
	}

	outcome := &WebhookOutcome{EventType: event.Type, GatewayOrderID: event.GatewayOrderID}
	if event.Type == gateway.EventIgnored || event.GatewayOrderID == "" {
		outcome.Ignored = true
		return outcome, nil
	}

	var result *SettlementResult
	switch event.Type {
	case gateway.EventPaymentSucceeded:
		result, err = s.settle(ctx, db, event.GatewayOrderID, event.GatewayPaymentID, "webhook")
	case gateway.EventOrderCanceled:
		result, err = s.MarkFailed(ctx, db, event.GatewayOrderID, event.Reason)
	case gateway.EventAttemptFailed:
		// Покупатель может повторить оплату по тому же заказу; закрывает его только отмена или sweep
		logger.CtxInfo(ctx, "payment attempt failed",
			"provider", s.gw.Name(), "gateway_order_id", event.GatewayOrderID,
			"gateway_payment_id", event.GatewayPaymentID, "reason", event.Reason)
		outcome.Ignored = true
		return outcome, nil
	default:
		outcome.Ignored = true
		return outcome, nil
	}

	// Заказы не из этой системы подтверждаем, чтобы шлюз перестал их слать
	if errors.Is(err, apperrors.ErrOrderNotFound) {
		logger.CtxWarn(ctx, "webhook for unknown order", "gateway_order_id", event.GatewayOrderID)
		outcome.Ignored = true
		return outcome, nil
	}
	if err != nil {
		return nil, err
	}

	outcome.Result = result
	return outcome, nil
}

func (s *verificationService) MarkFailed(ctx context.Context, db *gorm.DB, gatewayOrderID, reason string) (*SettlementResult, error) {
	if reason == "" {
		reason = "payment failed"
	}

	var result *SettlementResult
	err := withRetry(s.retries, func() error {
		order, err := s.orderRepo.FindByGatewayOrderID(db, gatewayOrderID)
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			result, err = s.recorded(db, order)
			return err
		}

		moved, err := s.orderRepo.MarkFailed(db, gatewayOrderID, reason, s.now())
		if err != nil {
			return err
		}
		if !moved {
			current, err := s.orderRepo.FindByGatewayOrderID(db, gatewayOrderID)
			if err != nil {
				return err
			}
			result, err = s.recorded(db, current)
			return err
		}

		result = &SettlementResult{GatewayOrderID: gatewayOrderID, Status: models.OrderStatusFailed, FailureReason: reason}
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	if !result.AlreadyProcessed {
		logger.PaymentLog(s.gw.Name(), "order_failed", gatewayOrderID, nil)
	}
	return result, nil
}

// settle - pending -> settled и начисление в одной транзакции.
// Условный UPDATE статуса гарантирует, что из двух параллельных вызовов кредит начислит один.
func (s *verificationService) settle(ctx context.Context, db *gorm.DB, gatewayOrderID, gatewayPaymentID, source string) (*SettlementResult, error) {
	var (
		result  *SettlementResult
		settled *models.PaymentOrder
	)

	err := withRetry(s.retries, func() error {
		settled = nil

		order, err := s.orderRepo.FindByGatewayOrderID(db, gatewayOrderID)
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			result, err = s.recorded(db, order)
			return err
		}

		return db.Transaction(func(tx *gorm.DB) error {
			now := s.now()

			moved, err := s.orderRepo.MarkSettled(tx, gatewayOrderID, gatewayPaymentID, now)
			if err != nil {
				return err
			}
			if !moved {
				current, err := s.orderRepo.FindByGatewayOrderID(tx, gatewayOrderID)
				if err != nil {
					return err
				}
				result, err = s.recorded(tx, current)
				return err
			}

			balance, err := s.ledgerRepo.Credit(tx, order.AccountID, order.CreditsToGrant)
			if err != nil {
				return err
			}
			if err := s.applyPurpose(tx, order, now); err != nil {
				return err
			}

			result = &SettlementResult{
				GatewayOrderID: gatewayOrderID,
				Status:         models.OrderStatusSettled,
				CreditsAdded:   order.CreditsToGrant,
				NewBalance:     balance,
			}
			order.Status = models.OrderStatusSettled
			settled = order
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			logger.CtxWarn(ctx, "settlement for unknown order", "gateway_order_id", gatewayOrderID, "source", source)
		}
		return nil, mapRepoError(err)
	}

	if settled != nil {
		logger.CtxInfo(ctx, "payment order settled",
			"gateway_order_id", gatewayOrderID,
			"account_id", settled.AccountID,
			"credits_added", result.CreditsAdded,
			"source", source,
		)
		s.sendReceipt(ctx, db, settled)
	}
	return result, nil
}

// applyPurpose - эффекты заказа сверх кредитов, в той же транзакции
func (s *verificationService) applyPurpose(tx *gorm.DB, order *models.PaymentOrder, now time.Time) error {
	switch order.Purpose {
	case models.PurposeSubscription:
		account, err := s.ledgerRepo.FindByID(tx, order.AccountID)
		if err != nil {
			return err
		}
		return s.ledgerRepo.ExtendPlan(tx, order.AccountID, s.pricing.PlanExpiry(account.PlanExpiresAt, now))
	case models.PurposeFeatureUnlock:
		if order.FeatureID == nil {
			return nil
		}
		orderID := order.ID
		return s.unlockRepo.Grant(tx, &models.FeatureUnlock{
			AccountID: order.AccountID,
			FeatureID: *order.FeatureID,
			ResumeID:  order.ResumeID,
			OrderID:   &orderID,
			ExpiresAt: s.pricing.UnlockExpiry(now),
		})
	}
	return nil
}

// recorded - уже зафиксированный исход терминального заказа, без повторного применения
func (s *verificationService) recorded(db *gorm.DB, order *models.PaymentOrder) (*SettlementResult, error) {
	result := &SettlementResult{
		GatewayOrderID:   order.GatewayOrderID,
		Status:           order.Status,
		AlreadyProcessed: true,
	}
	switch order.Status {
	case models.OrderStatusSettled:
		result.CreditsAdded = order.CreditsToGrant
	case models.OrderStatusFailed:
		result.FailureReason = order.FailureReason
	}

	account, err := s.ledgerRepo.FindByID(db, order.AccountID)
	if err != nil {
		return nil, err
	}
	result.NewBalance = account.Balance
	return result, nil
}

func (s *verificationService) sendReceipt(ctx context.Context, db *gorm.DB, order *models.PaymentOrder) {
	if s.notifier == nil {
		return
	}
	account, err := s.ledgerRepo.FindByID(db, order.AccountID)
	if err != nil || account.Email == "" {
		return
	}

	go func(ctx context.Context) {
		if err := s.notifier.SendReceipt(ctx, account, order); err != nil {
			logger.CtxWithError(ctx, "failed to send payment receipt", err, "gateway_order_id", order.GatewayOrderID)
		}
	}(context.WithoutCancel(ctx))
}
