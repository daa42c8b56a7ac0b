package repositories

import (
	"errors"
	"time"
	"unicode/utf8"

	"resumeai_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound  = errors.New("payment order not found")
	ErrDuplicateOrder = errors.New("payment order already exists")
)

type PaymentOrderRepository interface {
	Create(db *gorm.DB, order *models.PaymentOrder) error
	FindByGatewayOrderID(db *gorm.DB, gatewayOrderID string) (*models.PaymentOrder, error)
	ListByAccount(db *gorm.DB, accountID string, limit, offset int) ([]models.PaymentOrder, int64, error)

	MarkSettled(db *gorm.DB, gatewayOrderID, gatewayPaymentID string, at time.Time) (bool, error)
	MarkFailed(db *gorm.DB, gatewayOrderID, reason string, at time.Time) (bool, error)
	FailStalePending(db *gorm.DB, createdBefore time.Time, reason string) (int64, error)
}

type PaymentOrderRepositoryImpl struct{}

func NewPaymentOrderRepository() PaymentOrderRepository {
	return &PaymentOrderRepositoryImpl{}
}

func (r *PaymentOrderRepositoryImpl) Create(db *gorm.DB, order *models.PaymentOrder) error {
	if err := db.Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateOrder
		}
		return err
	}
	return nil
}

func (r *PaymentOrderRepositoryImpl) FindByGatewayOrderID(db *gorm.DB, gatewayOrderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	if err := db.First(&order, "gateway_order_id = ?", gatewayOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *PaymentOrderRepositoryImpl) ListByAccount(db *gorm.DB, accountID string, limit, offset int) ([]models.PaymentOrder, int64, error) {
	var (
		orders []models.PaymentOrder
		total  int64
	)

	if err := db.Model(&models.PaymentOrder{}).Where("account_id = ?", accountID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	return orders, total, err
}

// MarkSettled - переход pending -> settled. false значит, что заказ уже не pending
// (его перевел другой вызов), и кредит начислять нельзя.
func (r *PaymentOrderRepositoryImpl) MarkSettled(db *gorm.DB, gatewayOrderID, gatewayPaymentID string, at time.Time) (bool, error) {
	at = at.UTC()
	result := db.Model(&models.PaymentOrder{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":             models.OrderStatusSettled,
			"gateway_payment_id": gatewayPaymentID,
			"settled_at":         &at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkFailed - переход pending -> failed, терминальные заказы не трогает
func (r *PaymentOrderRepositoryImpl) MarkFailed(db *gorm.DB, gatewayOrderID, reason string, at time.Time) (bool, error) {
	result := db.Model(&models.PaymentOrder{}).
		Where("gateway_order_id = ? AND status = ?", gatewayOrderID, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":         models.OrderStatusFailed,
			"failure_reason": truncate(reason, 255),
			"updated_at":     at.UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PaymentOrderRepositoryImpl) FailStalePending(db *gorm.DB, createdBefore time.Time, reason string) (int64, error) {
	result := db.Model(&models.PaymentOrder{}).
		Where("status = ? AND created_at < ?", models.OrderStatusPending, createdBefore.UTC()).
		Updates(map[string]interface{}{
			"status":         models.OrderStatusFailed,
			"failure_reason": truncate(reason, 255),
		})
	return result.RowsAffected, result.Error
}

// truncate режет по границе руны, чтобы не оставить битый UTF-8
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
