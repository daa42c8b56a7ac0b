package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestInsufficientCredit_Details(t *testing.T) {
	err := InsufficientCredit(0, 1)

	assert.Equal(t, http.StatusPaymentRequired, err.HTTPCode)
	assert.True(t, errors.Is(err, ErrInsufficientCredit))
	assert.Equal(t, map[string]int64{"available": 0, "required": 1, "shortfall": 1}, err.Details)
	assert.Nil(t, ErrInsufficientCredit.Details, "shared value must not be mutated")
}

func TestRateLimited_RetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	err := RateLimited(now.Add(time.Hour), now)

	details := err.Details.(map[string]interface{})
	assert.Equal(t, int64(3600), details["retry_after_seconds"])
	assert.Equal(t, http.StatusTooManyRequests, err.HTTPCode)
}

func TestIs_MatchesByCodeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("settle: %w", ErrInvalidSignature.WithError(errors.New("mismatch")))

	assert.True(t, errors.Is(wrapped, ErrInvalidSignature))
	assert.False(t, errors.Is(wrapped, ErrOrderNotFound))
	assert.True(t, HasCode(wrapped, CodeInvalidSignature))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"conflict", StorageConflict(errors.New("x")), true},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, true},
		{"pg deadlock", fmt.Errorf("tx: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"pg unique", &pgconn.PgError{Code: "23505"}, false},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
