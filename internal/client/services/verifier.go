package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/phishguard/internal/client/client"
	"github.com/dmitrijs2005/phishguard/internal/client/repositories/keymaterial"
	"github.com/dmitrijs2005/phishguard/internal/cryptox"
	"github.com/dmitrijs2005/phishguard/internal/logging"
)

// verificationPayload is the plaintext of the verification blob. The embedded
// user identity ties the blob to its owner: a key that decrypts the blob but
// reveals a different identity is still rejected.
type verificationPayload struct {
	Timestamp int64  `json:"timestamp"`
	UserID    string `json:"userId"`
}

// Verifier proves a candidate key correct without a server-side passphrase
// oracle. It checks the local verification blob first and falls back to
// decrypting one real encrypted record fetched from the backend.
type Verifier struct {
	client client.Client
	db     *sql.DB
	log    logging.Logger
	now    func() time.Time
}

func NewVerifier(apiClient client.Client, db *sql.DB, log logging.Logger) *Verifier {
	return &Verifier{
		client: apiClient,
		db:     db,
		log:    log.With("component", "verifier"),
		now:    time.Now,
	}
}

// Verify checks the candidate key for userID.
//
// Outcomes:
//   - nil: passphrase accepted; a fresh verification blob is persisted when
//     the local one was missing.
//   - ErrInvalidPassphrase: the key failed to decrypt the blob or a real
//     record, or the blob's embedded identity did not match.
//   - ErrVerificationUnavailable: the remote fallback was needed but the
//     backend was unreachable.
func (v *Verifier) Verify(ctx context.Context, userID string, candidateKey []byte) error {
	repo := keymaterial.NewSQLiteRepository(v.db)

	has, err := repo.Has(ctx, userID)
	if err != nil {
		return fmt.Errorf("key material lookup: %w", err)
	}

	if has {
		km, err := repo.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("key material lookup: %w", err)
		}
		var payload verificationPayload
		if err := cryptox.DecryptJSONField(km.VerificationBlob, candidateKey, &payload); err != nil {
			return ErrInvalidPassphrase
		}
		if payload.UserID != userID {
			return ErrInvalidPassphrase
		}
		return nil
	}

	// New device: verify against one real encrypted record.
	analyses, err := v.client.ListAnalyses(ctx, 1)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}

	if len(analyses) > 0 {
		if _, err := cryptox.DecryptField(analyses[0].InputContent, candidateKey); err != nil {
			return ErrInvalidPassphrase
		}
	}
	// Zero records: nothing to verify against on a fresh account, accept
	// optimistically.

	if err := v.persistBlob(ctx, repo, userID, candidateKey); err != nil {
		// Acceptance stands; the blob will be rebuilt on the next unlock.
		v.log.Warn(ctx, "failed to persist verification blob", "error", err)
	}
	return nil
}

// persistBlob synthesizes and stores a fresh verification blob so the local
// path applies on the next unlock. Any stored salt is preserved.
func (v *Verifier) persistBlob(ctx context.Context, repo keymaterial.Repository, userID string, key []byte) error {
	payload := verificationPayload{Timestamp: v.now().UnixMilli(), UserID: userID}
	blob, err := cryptox.EncryptJSONField(payload, key)
	if err != nil {
		return err
	}
	return repo.SetBlob(ctx, userID, blob)
}

// isUnavailable reports whether err is a transient backend failure rather
// than a verification verdict.
func isUnavailable(err error) bool {
	return errors.Is(err, ErrVerificationUnavailable) || errors.Is(err, client.ErrUnavailable)
}
