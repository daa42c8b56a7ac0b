package services

import (
	"errors"
	"time"

	"resumeai_backend/internal/repositories"
	"resumeai_backend/pkg/apperrors"
)

// Clock - источник времени, подменяется в тестах
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now()
}

// withRetry повторяет fn при временных конфликтах хранилища.
// После исчерпания попыток возвращает StorageConflict.
func withRetry(attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !apperrors.IsRetryable(err) {
			return err
		}
		time.Sleep(time.Duration(i+1) * 15 * time.Millisecond)
	}
	return apperrors.StorageConflict(err)
}

// mapRepoError переводит ошибки репозиториев в ошибки приложения
func mapRepoError(err error) error {
	var insufficient *repositories.InsufficientBalanceError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &insufficient):
		return apperrors.InsufficientCredit(insufficient.Available, insufficient.Required)
	case errors.Is(err, repositories.ErrAccountNotFound):
		return apperrors.ErrAccountNotFound.WithError(err)
	case errors.Is(err, repositories.ErrOrderNotFound):
		return apperrors.ErrOrderNotFound.WithError(err)
	case errors.Is(err, repositories.ErrNonPositiveAmount):
		return apperrors.ErrInvalidAmount.WithError(err)
	}

	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	return apperrors.InternalError(err)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
