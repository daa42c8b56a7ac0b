package services

import (
	"time"

	"resumeai_backend/internal/repositories"

	"gorm.io/gorm"
)

// Unlimited - значение Remaining для платного плана
const Unlimited = -1

type QuotaStatus struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter считает бесплатные использования за текущие сутки по журналу списаний.
// Ничего не пишет.
type RateLimiter interface {
	CheckDailyQuota(db *gorm.DB, accountID, actionKind string, planAllowsUnlimited bool) (*QuotaStatus, error)
}

type rateLimiter struct {
	usageRepo  repositories.UsageRepository
	dailyLimit int
	location   *time.Location
	now        Clock
}

func NewRateLimiter(usageRepo repositories.UsageRepository, dailyLimit int, location *time.Location, now Clock) RateLimiter {
	if dailyLimit < 1 {
		dailyLimit = 1
	}
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = systemClock
	}
	return &rateLimiter{
		usageRepo:  usageRepo,
		dailyLimit: dailyLimit,
		location:   location,
		now:        now,
	}
}

func (r *rateLimiter) CheckDailyQuota(db *gorm.DB, accountID, actionKind string, planAllowsUnlimited bool) (*QuotaStatus, error) {
	dayStart, resetAt := dayBounds(r.now(), r.location)

	if planAllowsUnlimited {
		return &QuotaStatus{Allowed: true, Remaining: Unlimited, ResetAt: resetAt}, nil
	}

	used, err := r.usageRepo.CountSince(db, accountID, actionKind, dayStart)
	if err != nil {
		return nil, mapRepoError(err)
	}

	remaining := r.dailyLimit - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return &QuotaStatus{
		Allowed:   int(used) < r.dailyLimit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// dayBounds - локальная полночь текущего дня и следующая полночь
func dayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
