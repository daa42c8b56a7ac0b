package apperrors

import (
	"math"
	"net/http"
	"time"
)

/*
Ошибки биллинга: кредиты, лимиты, заказы, подписи шлюза.
InsufficientCredit и RateLimited - ожидаемые исходы, детали нужны UI.
*/

var (
	ErrInvalidAmount = New(
		CodeInvalidAmount,
		"billing",
		"Amount must be a positive number of minor units",
		http.StatusBadRequest,
	)

	// ErrInvalidSignature - окончательный отказ, повтор бессмыслен
	ErrInvalidSignature = New(
		CodeInvalidSignature,
		"payment",
		"Payment signature verification failed",
		http.StatusUnauthorized,
	)

	ErrOrderNotFound = New(
		CodeOrderNotFound,
		"payment",
		"Payment order not found",
		http.StatusNotFound,
	)

	// ErrOrderFailed - заказ уже закрыт как неуспешный, оплатить его нельзя
	ErrOrderFailed = New(
		CodeOrderFailed,
		"payment",
		"Payment order has failed",
		http.StatusConflict,
	)

	ErrGatewayError = New(
		CodeGatewayError,
		"payment",
		"Payment gateway request failed",
		http.StatusBadGateway,
	)

	ErrStorageConflict = New(
		CodeStorageConflict,
		"ledger",
		"Concurrent update conflict, please retry",
		http.StatusConflict,
	)

	ErrGenerationFailed = New(
		CodeGenerationFailed,
		"generation",
		"Text generation failed",
		http.StatusBadGateway,
	)

	ErrInsufficientCredit = New(
		CodeInsufficientCredit,
		"billing",
		"Not enough credits",
		http.StatusPaymentRequired,
	)

	ErrRateLimited = New(
		CodeRateLimited,
		"billing",
		"Daily free limit reached",
		http.StatusTooManyRequests,
	)
)

// InsufficientCredit - не хватает кредитов; details говорят сколько именно
func InsufficientCredit(available, required int64) *AppError {
	return ErrInsufficientCredit.WithDetails(map[string]int64{
		"available": available,
		"required":  required,
		"shortfall": required - available,
	})
}

// RateLimited - исчерпан бесплатный дневной лимит до resetAt
func RateLimited(resetAt, now time.Time) *AppError {
	retryAfter := int64(math.Ceil(resetAt.Sub(now).Seconds()))
	if retryAfter < 0 {
		retryAfter = 0
	}
	return ErrRateLimited.WithDetails(map[string]interface{}{
		"reset_at":            resetAt,
		"retry_after_seconds": retryAfter,
	})
}

// GatewayError оборачивает ошибку шлюза. diag уходит клиенту только если не nil.
func GatewayError(err error, diag interface{}) *AppError {
	e := ErrGatewayError.WithError(err)
	if diag != nil {
		e = e.WithDetails(diag)
	}
	return e
}

// OrderFailed - callback пришел по закрытому заказу; reason берется из заказа
func OrderFailed(gatewayOrderID, reason string) *AppError {
	return ErrOrderFailed.WithDetails(map[string]string{
		"gateway_order_id": gatewayOrderID,
		"failure_reason":   reason,
	})
}

func GenerationFailed(err error, creditsDebited int64) *AppError {
	return ErrGenerationFailed.WithError(err).WithDetails(map[string]int64{
		"credits_debited": creditsDebited,
	})
}

func StorageConflict(err error) *AppError {
	return ErrStorageConflict.WithError(err)
}

var ErrAccountNotFound = New(
	CodeNotFound,
	"ledger",
	"Account not found",
	http.StatusNotFound,
)
