package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeai_backend/internal/models"
)

func TestIsUnlocked(t *testing.T) {
	f := newFixture(t)
	account := f.account(t, "reader", 100)

	unlocked, err := f.unlocks.IsUnlocked(f.db, account.ID, "ats_report")
	require.NoError(t, err)
	assert.False(t, unlocked, "balance alone never unlocks a feature")

	expiresAt := f.clock.Now().Add(48 * time.Hour)
	require.NoError(t, f.unlockRepo.Grant(f.db, &models.FeatureUnlock{
		AccountID: account.ID,
		FeatureID: "ats_report",
		ExpiresAt: &expiresAt,
	}))

	unlocked, err = f.unlocks.IsUnlocked(f.db, account.ID, "ats_report")
	require.NoError(t, err)
	assert.True(t, unlocked)

	unlocked, err = f.unlocks.IsUnlocked(f.db, account.ID, "cover_letter_pro")
	require.NoError(t, err)
	assert.False(t, unlocked)

	active, err := f.unlocks.ActiveUnlocks(f.db, account.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	f.clock.Advance(72 * time.Hour)
	unlocked, err = f.unlocks.IsUnlocked(f.db, account.ID, "ats_report")
	require.NoError(t, err)
	assert.False(t, unlocked, "expired unlock")
}

func TestIsUnlocked_PaidPlanUnlocksEverything(t *testing.T) {
	f := newFixture(t)
	account := f.account(t, "premium", 0)
	f.makePaid(t, account.ID)

	unlocked, err := f.unlocks.IsUnlocked(f.db, account.ID, "anything")
	require.NoError(t, err)
	assert.True(t, unlocked)

	f.clock.Advance(31 * 24 * time.Hour)
	unlocked, err = f.unlocks.IsUnlocked(f.db, account.ID, "anything")
	require.NoError(t, err)
	assert.False(t, unlocked, "plan expired")
}
