package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeai_backend/internal/dto"
	"resumeai_backend/internal/generation"
	"resumeai_backend/pkg/apperrors"
)

func spend(credits int64) *dto.SpendRequest {
	return &dto.SpendRequest{Credits: credits, ActionKind: "resume_analyze", Input: "Senior Go engineer, 8 years"}
}

func TestPaidAction_Success(t *testing.T) {
	f := newFixture(t)
	account := f.account(t, "writer", 3)

	resp, err := f.paid.Run(context.Background(), f.db, account.ID, spend(2))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Output)
	assert.Equal(t, int64(2), resp.CreditsSpent)
	assert.Equal(t, int64(1), resp.Balance)

	history, total, err := f.ledger.UsageHistory(f.db, account.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "resume_analyze", history[0].ActionKind)
}

func TestPaidAction_GenerationFailureKeepsDebit(t *testing.T) {
	f := newFixture(t)
	f.generator = generation.GeneratorFunc(func(ctx context.Context, req generation.Request) (string, error) {
		return "", errors.New("upstream 503")
	})
	f.build()
	account := f.account(t, "unlucky-writer", 3)

	_, err := f.paid.Run(context.Background(), f.db, account.ID, spend(1))
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeGenerationFailed, appErr.Code)
	assert.Equal(t, map[string]int64{"credits_debited": 1}, appErr.Details)
	assert.Equal(t, int64(2), f.balance(t, account.ID))
}

func TestPaidAction_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	poor := f.account(t, "poor", 0)
	_, err := f.paid.Run(ctx, f.db, poor.ID, spend(1))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientCredit)

	daily := f.account(t, "daily-writer", 5)
	_, err = f.paid.Run(ctx, f.db, daily.ID, spend(1))
	require.NoError(t, err)

	_, err = f.paid.Run(ctx, f.db, daily.ID, spend(1))
	assert.ErrorIs(t, err, apperrors.ErrRateLimited)
	assert.Equal(t, int64(4), f.balance(t, daily.ID))
}
