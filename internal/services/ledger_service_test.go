package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeai_backend/pkg/apperrors"
)

func TestGetOrCreateAccount_StartingCredits(t *testing.T) {
	f := newFixture(t)

	account, err := f.ledger.GetOrCreateAccount(f.db, "auth0|42", "a@example.com", "Asel")
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.Balance)

	again, err := f.ledger.GetOrCreateAccount(f.db, "auth0|42", "changed@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, account.ID, again.ID)
	assert.Equal(t, "a@example.com", again.Email)

	_, err = f.ledger.GetOrCreateAccount(f.db, "", "", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestLedgerService_Debit(t *testing.T) {
	f := newFixture(t)
	account := f.account(t, "debtor", 2)

	balance, err := f.ledger.Debit(f.db, account.ID, 2, "cover_letter", map[string]string{"resume_id": "r-9"})
	require.NoError(t, err)
	assert.Zero(t, balance)

	_, err = f.ledger.Debit(f.db, account.ID, 1, "cover_letter", nil)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInsufficientCredit, appErr.Code)
	assert.Equal(t, map[string]int64{"available": 0, "required": 1, "shortfall": 1}, appErr.Details)

	_, err = f.ledger.Debit(f.db, account.ID, 0, "cover_letter", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	records, total, err := f.ledger.UsageHistory(f.db, account.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.JSONEq(t, `{"resume_id":"r-9"}`, string(records[0].Metadata))
}
