package models

import "time"

// UnlockAttempts is the authoritative counter shape reported by the backend.
// LockedUntil is nil when the account is not locked.
type UnlockAttempts struct {
	Attempts    int        `json:"attempts"`
	LockedUntil *time.Time `json:"lockedUntil"`
}

// LockoutCacheEntry is the advisory local copy of UnlockAttempts, stamped
// with the time of the last refresh.
type LockoutCacheEntry struct {
	UserID      string
	LockedUntil *time.Time
	Attempts    int
	UpdatedAt   time.Time
}

// LockoutStatus is the derived status served to the UI.
type LockoutStatus struct {
	IsLocked         bool       `json:"isLocked"`
	RemainingSeconds int        `json:"remainingSeconds"`
	Attempts         int        `json:"attempts"`
	LockedUntil      *time.Time `json:"lockedUntil"`
}
