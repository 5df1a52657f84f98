// Package lockouts caches the backend's unlock-attempt counters locally so
// the UI can show a countdown without polling. The cache is advisory; the
// remote counter stays authoritative.
package lockouts

import (
	"context"

	"github.com/dmitrijs2005/phishguard/internal/client/models"
)

type Repository interface {
	// Get returns the cached entry for userID, or nil when none exists.
	Get(ctx context.Context, userID string) (*models.LockoutCacheEntry, error)
	// Save upserts the cache entry, stamping UpdatedAt.
	Save(ctx context.Context, entry *models.LockoutCacheEntry) error
	// Delete removes the cache entry. Missing entries are not an error.
	Delete(ctx context.Context, userID string) error
}
