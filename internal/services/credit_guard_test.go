package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeai_backend/pkg/apperrors"
)

func TestAuthorize_InsufficientCredit(t *testing.T) {
	f := newFixture(t)
	account := f.account(t, "broke", 0)

	decision, err := f.guard.Authorize(f.db, account.ID, 2, "resume_analyze")
	require.NoError(t, err)

	assert.Equal(t, DecisionInsufficientCredit, decision.Kind)
	assert.Equal(t, int64(0), decision.Available)
	assert.Equal(t, int64(2), decision.Required)

	appErr, ok := apperrors.AsAppError(decision.Err(f.clock.Now()))
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInsufficientCredit, appErr.Code)
}

func TestAuthorize_RateLimitedThenAllowedForPaid(t *testing.T) {
	f := newFixture(t)
	account := f.account(t, "daily", 5)

	decision, err := f.guard.Authorize(f.db, account.ID, 1, "resume_analyze")
	require.NoError(t, err)
	assert.True(t, decision.Allowed())

	_, err = f.ledger.Debit(f.db, account.ID, 1, "resume_analyze", nil)
	require.NoError(t, err)

	decision, err = f.guard.Authorize(f.db, account.ID, 1, "resume_analyze")
	require.NoError(t, err)
	assert.Equal(t, DecisionRateLimited, decision.Kind)
	require.NotNil(t, decision.ResetAt)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, kolkata), *decision.ResetAt)

	appErr, ok := apperrors.AsAppError(decision.Err(f.clock.Now()))
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeRateLimited, appErr.Code)

	f.makePaid(t, account.ID)
	decision, err = f.guard.Authorize(f.db, account.ID, 1, "resume_analyze")
	require.NoError(t, err)
	assert.True(t, decision.Allowed())
	assert.Equal(t, Unlimited, decision.Remaining)
}

func TestAuthorize_BalanceCheckedBeforeQuota(t *testing.T) {
	f := newFixture(t)
	account := f.account(t, "both", 1)

	_, err := f.ledger.Debit(f.db, account.ID, 1, "resume_analyze", nil)
	require.NoError(t, err)

	decision, err := f.guard.Authorize(f.db, account.ID, 1, "resume_analyze")
	require.NoError(t, err)
	assert.Equal(t, DecisionInsufficientCredit, decision.Kind)
}

func TestAuthorize_Validation(t *testing.T) {
	f := newFixture(t)
	account := f.account(t, "zero", 1)

	_, err := f.guard.Authorize(f.db, account.ID, 0, "resume_analyze")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, err = f.guard.Authorize(f.db, "00000000-0000-0000-0000-000000000000", 1, "resume_analyze")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}
