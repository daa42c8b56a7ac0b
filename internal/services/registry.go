package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	LedgerService       LedgerService
	RateLimiter         RateLimiter
	CreditGuard         CreditGuard
	OrderService        OrderService
	VerificationService VerificationService
	UnlockResolver      UnlockResolver
	PaidActionService   PaidActionService
}
