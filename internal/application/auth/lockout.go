package auth

import (
	"time"

	"github.com/go-library-cms/internal/domain"
)

const (
	FailedWindow      = 10 * time.Minute
	MaxFailedAttempts = 5
	LockDuration      = 30 * time.Minute
)

// LockDecision reports the outcome of recording one failed attempt.
type LockDecision struct {
	Count  int
	Locked bool
	Until  time.Time
}

// LockoutPolicy implements the sliding failure window. It mutates the user
// record in memory; persisting it is the caller's job. Two concurrent failures
// for the same user read the same count and can under-count by one.
type LockoutPolicy struct {
	window      time.Duration
	maxAttempts int
	lockFor     time.Duration
}

func NewLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{window: FailedWindow, maxAttempts: MaxFailedAttempts, lockFor: LockDuration}
}

// RecordFailure starts a new window when the previous failure is older than
// the window, otherwise it extends the current one. Reaching the threshold
// locks the account and zeroes the counter.
func (p LockoutPolicy) RecordFailure(u *domain.User, now time.Time) LockDecision {
	if u.LastFailedLoginAt == nil || now.Sub(*u.LastFailedLoginAt) > p.window {
		u.FailedLoginCount = 1
	} else {
		u.FailedLoginCount++
	}
	stamp := now
	u.LastFailedLoginAt = &stamp

	if u.FailedLoginCount < p.maxAttempts {
		return LockDecision{Count: u.FailedLoginCount}
	}
	until := now.Add(p.lockFor)
	u.AccountLockedUntil = &until
	u.FailedLoginCount = 0
	return LockDecision{Count: p.maxAttempts, Locked: true, Until: until}
}

func (p LockoutPolicy) IsLocked(u *domain.User, now time.Time) bool {
	return u.AccountLockedUntil != nil && now.Before(*u.AccountLockedUntil)
}

// Remaining is zero when the account is not locked.
func (p LockoutPolicy) Remaining(u *domain.User, now time.Time) time.Duration {
	if !p.IsLocked(u, now) {
		return 0
	}
	return u.AccountLockedUntil.Sub(now)
}

// Reset clears the counter, the last failure and the lock together.
func (p LockoutPolicy) Reset(u *domain.User) {
	u.FailedLoginCount = 0
	u.LastFailedLoginAt = nil
	u.AccountLockedUntil = nil
}
