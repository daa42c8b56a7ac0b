package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeai_backend/internal/models"
	"resumeai_backend/internal/repositories"
	"resumeai_backend/internal/testutil"
)

func TestSweepOnce(t *testing.T) {
	db := testutil.NewDB(t)
	ledgerRepo := repositories.NewLedgerRepository()
	orderRepo := repositories.NewPaymentOrderRepository()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	worker := NewBillingWorker(db, ledgerRepo, orderRepo, time.Minute, 24*time.Hour)
	worker.now = func() time.Time { return now }

	account, err := ledgerRepo.GetOrCreateAccount(db, "sweeper", "", "", 0)
	require.NoError(t, err)

	newOrder := func(gatewayOrderID string, createdAt time.Time) {
		order := &models.PaymentOrder{
			AccountID:      account.ID,
			Provider:       "fake",
			Purpose:        models.PurposeCredits,
			Amount:         900,
			Currency:       "INR",
			GatewayOrderID: gatewayOrderID,
			Status:         models.OrderStatusPending,
			CreditsToGrant: 1,
			Receipt:        "rcpt_" + gatewayOrderID,
		}
		order.CreatedAt = createdAt
		require.NoError(t, orderRepo.Create(db, order))
	}
	newOrder("order_stale", now.Add(-25*time.Hour))
	newOrder("order_fresh", now.Add(-time.Hour))

	require.NoError(t, ledgerRepo.ExtendPlan(db, account.ID, now.Add(-time.Minute)))

	result := worker.SweepOnce(context.Background())
	assert.Equal(t, int64(1), result.FailedOrders)
	assert.Equal(t, int64(1), result.ExpiredPlans)

	stale, err := orderRepo.FindByGatewayOrderID(db, "order_stale")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFailed, stale.Status)
	assert.Equal(t, "expired", stale.FailureReason)

	fresh, err := orderRepo.FindByGatewayOrderID(db, "order_fresh")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, fresh.Status)

	updated, err := ledgerRepo.FindByID(db, account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, updated.Plan)

	again := worker.SweepOnce(context.Background())
	assert.Zero(t, again.FailedOrders)
	assert.Zero(t, again.ExpiredPlans)
}

func TestStartStopsWithContext(t *testing.T) {
	db := testutil.NewDB(t)
	worker := NewBillingWorker(db, repositories.NewLedgerRepository(), repositories.NewPaymentOrderRepository(), time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
