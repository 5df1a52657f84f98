package client

import (
	"context"

	"github.com/dmitrijs2005/phishguard/internal/client/models"
)

// EncryptionStatus is the backend's aggregate view of a user's encryption
// setup. Salt is present only when hasSalt is true.
type EncryptionStatus struct {
	HasSalt     bool   `json:"hasSalt"`
	HasAnalyses bool   `json:"hasAnalyses"`
	Salt        []byte `json:"salt,omitempty"`
}

// Client is the remote collaborator consumed by the encryption subsystem.
// The backend stores only salts, ciphertext and counters; it never sees a
// passphrase or a derived key.
type Client interface {
	Close() error
	GetEncryptionStatus(ctx context.Context) (*EncryptionStatus, error)
	SaveSalt(ctx context.Context, salt []byte) error
	ListAnalyses(ctx context.Context, limit int) ([]models.EncryptedAnalysis, error)
	SaveAnalysis(ctx context.Context, analysis *models.EncryptedAnalysis) error
	GetUnlockStatus(ctx context.Context) (*models.UnlockAttempts, error)
}
