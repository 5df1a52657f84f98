package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/phishguard/internal/client/client"
	"github.com/dmitrijs2005/phishguard/internal/client/models"
	"github.com/dmitrijs2005/phishguard/internal/client/pubsub"
	"github.com/dmitrijs2005/phishguard/internal/client/repositories/lockouts"
	"github.com/dmitrijs2005/phishguard/internal/logging"
)

const (
	// DefaultRefreshThrottle is the minimum interval between remote
	// unlock-status reads; refreshes inside the window are no-ops so a
	// countdown timer cannot hammer the backend.
	DefaultRefreshThrottle = time.Second
	// DefaultCacheTTL bounds how long a cached "not locked" answer is
	// trusted before the remote counter is consulted again.
	DefaultCacheTTL = 30 * time.Second
)

// LockoutTracker maintains the failed-unlock status for one user: the local
// cache serves countdown reads, the backend counter stays authoritative, and
// every cache write is broadcast so sibling instances re-derive status
// without polling. The tracker is a UX affordance only; enforcement is
// server-side.
type LockoutTracker struct {
	mu sync.Mutex

	client client.Client
	db     *sql.DB
	bus    pubsub.Bus
	log    logging.Logger

	userID   string
	throttle time.Duration
	cacheTTL time.Duration
	now      func() time.Time

	lastRefresh time.Time
}

func NewLockoutTracker(apiClient client.Client, db *sql.DB, bus pubsub.Bus, log logging.Logger, userID string) *LockoutTracker {
	return &LockoutTracker{
		client:   apiClient,
		db:       db,
		bus:      bus,
		log:      log.With("component", "lockout"),
		userID:   userID,
		throttle: DefaultRefreshThrottle,
		cacheTTL: DefaultCacheTTL,
		now:      time.Now,
	}
}

// SetIntervals overrides the refresh throttle and cache TTL. Zero or
// negative values keep the current setting.
func (t *LockoutTracker) SetIntervals(throttle, cacheTTL time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if throttle > 0 {
		t.throttle = throttle
	}
	if cacheTTL > 0 {
		t.cacheTTL = cacheTTL
	}
}

// Topic returns the pub/sub topic lockout changes for this user are
// broadcast on.
func (t *LockoutTracker) Topic() string {
	return "lockout:" + t.userID
}

// Subscribe returns a channel that receives a notification whenever any
// instance on this device rewrites the lockout cache, plus a cancel
// function. Receivers are expected to re-read Status.
func (t *LockoutTracker) Subscribe() (<-chan string, func()) {
	return t.bus.Subscribe(t.Topic())
}

// Status reports the current lockout state. A fresh cache entry answers
// directly; otherwise the remote counter is consulted (subject to the
// refresh throttle). Remote failure degrades to the not-locked default.
func (t *LockoutTracker) Status(ctx context.Context) (*models.LockoutStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	repo := lockouts.NewSQLiteRepository(t.db)

	entry, err := repo.Get(ctx, t.userID)
	if err != nil {
		return nil, fmt.Errorf("lockout cache lookup: %w", err)
	}

	if entry != nil && t.cacheFresh(entry) {
		return t.derive(entry), nil
	}

	entry = t.refreshLocked(ctx, repo)
	return t.derive(entry), nil
}

// Refresh forces a re-check against the remote counter. Calls within the
// throttle window of the previous refresh are no-ops.
func (t *LockoutTracker) Refresh(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.refreshLocked(ctx, lockouts.NewSQLiteRepository(t.db))
	return nil
}

// NoteFailedUnlock records that an unlock attempt just failed: the remote
// counter has advanced, so re-read it (throttled like any other refresh).
func (t *LockoutTracker) NoteFailedUnlock(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.refreshLocked(ctx, lockouts.NewSQLiteRepository(t.db))
}

// refreshLocked re-reads the authoritative counter and rewrites the cache,
// broadcasting the change. On remote failure the cache resets to the
// not-locked default rather than propagating an error. Called with t.mu
// held; returns the entry now in effect.
func (t *LockoutTracker) refreshLocked(ctx context.Context, repo lockouts.Repository) *models.LockoutCacheEntry {
	now := t.now()
	if now.Sub(t.lastRefresh) < t.throttle {
		entry, err := repo.Get(ctx, t.userID)
		if err != nil || entry == nil {
			return &models.LockoutCacheEntry{UserID: t.userID}
		}
		return entry
	}
	t.lastRefresh = now

	entry := &models.LockoutCacheEntry{UserID: t.userID, UpdatedAt: now}

	status, err := t.client.GetUnlockStatus(ctx)
	if err != nil {
		t.log.Warn(ctx, "unlock status unavailable, assuming not locked", "error", err)
	} else {
		entry.Attempts = status.Attempts
		entry.LockedUntil = status.LockedUntil
	}

	if err := repo.Save(ctx, entry); err != nil {
		t.log.Warn(ctx, "failed to write lockout cache", "error", err)
	} else {
		t.bus.Publish(t.Topic(), t.userID)
	}
	return entry
}

// cacheFresh reports whether the entry can answer without a remote read:
// either the lock is still running (the countdown is pure arithmetic) or the
// entry is younger than the cache TTL.
func (t *LockoutTracker) cacheFresh(entry *models.LockoutCacheEntry) bool {
	now := t.now()
	if entry.LockedUntil != nil && now.Before(*entry.LockedUntil) {
		return true
	}
	if entry.LockedUntil != nil && !now.Before(*entry.LockedUntil) {
		// lock expired; the remote counter decides what comes next
		return false
	}
	return now.Sub(entry.UpdatedAt) < t.cacheTTL
}

// derive computes the user-facing status from a cache entry.
func (t *LockoutTracker) derive(entry *models.LockoutCacheEntry) *models.LockoutStatus {
	status := &models.LockoutStatus{Attempts: entry.Attempts}

	if entry.LockedUntil != nil {
		now := t.now()
		if now.Before(*entry.LockedUntil) {
			status.IsLocked = true
			status.LockedUntil = entry.LockedUntil
			remaining := entry.LockedUntil.Sub(now)
			status.RemainingSeconds = int((remaining + time.Second - 1) / time.Second)
		}
	}
	return status
}
