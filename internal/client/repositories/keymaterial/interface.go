// Package keymaterial persists per-user local key material: the encrypted
// verification blob and optionally the salt. One row per user identity;
// concurrent writers for the same user are last-write-wins.
package keymaterial

import (
	"context"

	"github.com/dmitrijs2005/phishguard/internal/client/models"
)

type Repository interface {
	// Get returns the record for userID, or nil when none exists.
	Get(ctx context.Context, userID string) (*models.KeyMaterial, error)
	// Has reports whether a record with a non-empty verification blob exists.
	Has(ctx context.Context, userID string) (bool, error)
	// Save upserts the full record (blob and salt).
	Save(ctx context.Context, km *models.KeyMaterial) error
	// SetBlob upserts only the verification blob, preserving any stored salt.
	SetBlob(ctx context.Context, userID, blob string) error
	// SetSalt upserts only the salt, preserving any stored blob.
	SetSalt(ctx context.Context, userID string, salt []byte) error
	// ClearBlob blanks the verification blob but keeps the row and its salt.
	ClearBlob(ctx context.Context, userID string) error
}
