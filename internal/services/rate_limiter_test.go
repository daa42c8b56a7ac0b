package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDailyQuota_FreePlanOncePerDay(t *testing.T) {
	f := newFixture(t)
	account := f.account(t, "free-user", 10)

	first, err := f.limiter.CheckDailyQuota(f.db, account.ID, "resume_analyze", false)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	_, err = f.ledger.Debit(f.db, account.ID, 1, "resume_analyze", nil)
	require.NoError(t, err)

	second, err := f.limiter.CheckDailyQuota(f.db, account.ID, "resume_analyze", false)
	require.NoError(t, err)
	assert.False(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, kolkata), second.ResetAt)

	other, err := f.limiter.CheckDailyQuota(f.db, account.ID, "cover_letter", false)
	require.NoError(t, err)
	assert.True(t, other.Allowed, "quota is per action kind")
}

func TestCheckDailyQuota_ResetsAtLocalMidnight(t *testing.T) {
	f := newFixture(t)
	account := f.account(t, "night-owl", 10)

	// 23:50 по Калькутте, в UTC это еще тот же день
	f.clock.Set(time.Date(2026, 3, 10, 23, 50, 0, 0, kolkata))
	_, err := f.ledger.Debit(f.db, account.ID, 1, "resume_analyze", nil)
	require.NoError(t, err)

	status, err := f.limiter.CheckDailyQuota(f.db, account.ID, "resume_analyze", false)
	require.NoError(t, err)
	assert.False(t, status.Allowed)

	f.clock.Advance(15 * time.Minute)
	status, err = f.limiter.CheckDailyQuota(f.db, account.ID, "resume_analyze", false)
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, kolkata), status.ResetAt)
}

func TestCheckDailyQuota_PaidPlanUnlimited(t *testing.T) {
	f := newFixture(t)
	account := f.account(t, "paid-user", 10)

	for i := 0; i < 5; i++ {
		status, err := f.limiter.CheckDailyQuota(f.db, account.ID, "resume_analyze", true)
		require.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, Unlimited, status.Remaining)

		_, err = f.ledger.Debit(f.db, account.ID, 1, "resume_analyze", nil)
		require.NoError(t, err)
	}
}

func TestDayBounds_DST(t *testing.T) {
	ny := mustLocation("America/New_York")
	// 8 марта 2026 - переход на летнее время, в сутках 23 часа
	start, end := dayBounds(time.Date(2026, 3, 8, 12, 0, 0, 0, ny), ny)

	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, ny), start)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, ny), end)
	assert.Equal(t, 23*time.Hour, end.Sub(start))
}
