package workers

import (
	"context"
	"time"

	"resumeai_backend/internal/logger"
	"resumeai_backend/internal/repositories"

	"gorm.io/gorm"
)

const (
	workerName         = "billing"
	stalePendingReason = "expired"
)

// BillingWorker сверяет состояние, которое не закрывается запросами:
// зависшие pending-заказы и истекшие платные планы.
type BillingWorker struct {
	db         *gorm.DB
	ledgerRepo repositories.LedgerRepository
	orderRepo  repositories.PaymentOrderRepository
	interval   time.Duration
	pendingTTL time.Duration
	now        func() time.Time
}

func NewBillingWorker(
	db *gorm.DB,
	ledgerRepo repositories.LedgerRepository,
	orderRepo repositories.PaymentOrderRepository,
	interval, pendingTTL time.Duration,
) *BillingWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if pendingTTL <= 0 {
		pendingTTL = 24 * time.Hour
	}
	return &BillingWorker{
		db:         db,
		ledgerRepo: ledgerRepo,
		orderRepo:  orderRepo,
		interval:   interval,
		pendingTTL: pendingTTL,
		now:        time.Now,
	}
}

// Start запускает сверку в фоне; останавливается по ctx
func (w *BillingWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *BillingWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.SweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.With("worker", workerName).Info("Billing worker stopped")
			return
		case <-ticker.C:
			w.SweepOnce(ctx)
		}
	}
}

// SweepResult - сколько строк изменил один проход
type SweepResult struct {
	FailedOrders int64
	ExpiredPlans int64
}

// SweepOnce - один проход сверки. Обе операции - условные UPDATE, повтор безопасен.
func (w *BillingWorker) SweepOnce(ctx context.Context) SweepResult {
	var result SweepResult
	db := w.db.WithContext(ctx)
	now := w.now()

	failed, err := w.orderRepo.FailStalePending(db, now.Add(-w.pendingTTL), stalePendingReason)
	logger.WorkerLog(workerName, "fail_stale_orders", failed, err)
	if err == nil {
		result.FailedOrders = failed
	}

	expired, err := w.ledgerRepo.ExpirePlans(db, now)
	logger.WorkerLog(workerName, "expire_plans", expired, err)
	if err == nil {
		result.ExpiredPlans = expired
	}

	return result
}
