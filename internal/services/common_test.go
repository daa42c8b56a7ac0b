package services

import (
	"errors"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"

	"resumeai_backend/internal/repositories"
	"resumeai_backend/pkg/apperrors"
)

func TestWithRetry(t *testing.T) {
	busy := sqlite3.Error{Code: sqlite3.ErrBusy}
	is := assert.New(t)
	is.True(apperrors.IsRetryable(busy))

	calls := 0
	err := withRetry(3, func() error {
		calls++
		if calls < 2 {
			return busy
		}
		return nil
	})
	is.NoError(err)
	is.Equal(2, calls)

	calls = 0
	err = withRetry(3, func() error {
		calls++
		return busy
	})
	is.Equal(3, calls)
	is.ErrorIs(err, apperrors.ErrStorageConflict)

	calls = 0
	err = withRetry(3, func() error {
		calls++
		return repositories.ErrOrderNotFound
	})
	is.Equal(1, calls)
	is.ErrorIs(err, repositories.ErrOrderNotFound)
}

func TestMapRepoError(t *testing.T) {
	err := mapRepoError(&repositories.InsufficientBalanceError{Available: 1, Required: 3})
	appErr, ok := apperrors.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.CodeInsufficientCredit, appErr.Code)
	assert.Equal(t, map[string]int64{"available": 1, "required": 3, "shortfall": 2}, appErr.Details)

	assert.ErrorIs(t, mapRepoError(repositories.ErrNonPositiveAmount), apperrors.ErrInvalidAmount)
	assert.True(t, apperrors.HasCode(mapRepoError(errors.New("boom")), apperrors.CodeInternalError))
	assert.NoError(t, mapRepoError(nil))
}
