package services

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"resumeai_backend/internal/email"
	"resumeai_backend/internal/generation"
	"resumeai_backend/internal/models"
	"resumeai_backend/internal/repositories"
	"resumeai_backend/internal/testutil"
)

const testSigningSecret = "test-signing-secret"

var kolkata = mustLocation("Asia/Kolkata")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

type fixture struct {
	db        *gorm.DB
	clock     *testutil.Clock
	gw        *testutil.FakeGateway
	mail      *email.NoopProvider
	generator generation.Generator
	pricing   PricingPolicy

	ledgerRepo repositories.LedgerRepository
	orderRepo  repositories.PaymentOrderRepository
	unlockRepo repositories.FeatureUnlockRepository

	ledger  LedgerService
	limiter RateLimiter
	guard   CreditGuard
	orders  OrderService
	verify  VerificationService
	unlocks UnlockResolver
	paid    PaidActionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		db:        testutil.NewDB(t),
		clock:     testutil.NewClock(time.Date(2026, 3, 10, 9, 30, 0, 0, kolkata)),
		gw:        testutil.NewFakeGateway(),
		mail:      &email.NoopProvider{},
		generator: generation.EchoGenerator{},
		pricing: PricingPolicy{
			CreditUnitPrice:     map[string]int64{"INR": 900, "USD": 15},
			SubscriptionCredits: 50,
			SubscriptionDays:    30,
		},
		ledgerRepo: repositories.NewLedgerRepository(),
		orderRepo:  repositories.NewPaymentOrderRepository(),
		unlockRepo: repositories.NewFeatureUnlockRepository(),
	}
	f.build()
	return f
}

// build пересобирает сервисы, например после подмены генератора
func (f *fixture) build() {
	usageRepo := repositories.NewUsageRepository()
	now := f.clock.Now

	f.ledger = NewLedgerService(f.ledgerRepo, usageRepo, 1, 3, now)
	f.limiter = NewRateLimiter(usageRepo, 1, kolkata, now)
	f.guard = NewCreditGuard(f.ledgerRepo, f.limiter, now)
	f.orders = NewOrderService(f.ledgerRepo, f.orderRepo, f.gw, OrderServiceConfig{
		Pricing:        f.pricing,
		GatewayTimeout: time.Second,
	}, now)
	f.verify = NewVerificationService(f.ledgerRepo, f.orderRepo, f.unlockRepo, f.gw,
		email.NewReceiptNotifier(f.mail, nil),
		VerificationServiceConfig{SigningSecret: testSigningSecret, Pricing: f.pricing, Retries: 3},
		now)
	f.unlocks = NewUnlockResolver(f.ledgerRepo, f.unlockRepo, now)
	f.paid = NewPaidActionService(f.guard, f.ledger, f.generator, now)
}

func (f *fixture) account(t *testing.T, externalID string, balance int64) *models.Account {
	t.Helper()

	account, err := f.ledgerRepo.GetOrCreateAccount(f.db, externalID, externalID+"@example.com", "", balance)
	require.NoError(t, err)
	return account
}

func (f *fixture) balance(t *testing.T, accountID string) int64 {
	t.Helper()

	account, err := f.ledgerRepo.FindByID(f.db, accountID)
	require.NoError(t, err)
	return account.Balance
}

func (f *fixture) makePaid(t *testing.T, accountID string) {
	t.Helper()
	require.NoError(t, f.ledgerRepo.ExtendPlan(f.db, accountID, f.clock.Now().AddDate(0, 0, 30)))
}
