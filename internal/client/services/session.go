package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/phishguard/internal/client/client"
	"github.com/dmitrijs2005/phishguard/internal/client/models"
	"github.com/dmitrijs2005/phishguard/internal/client/repositories/keymaterial"
	"github.com/dmitrijs2005/phishguard/internal/client/repositories/lockouts"
	"github.com/dmitrijs2005/phishguard/internal/common"
	"github.com/dmitrijs2005/phishguard/internal/cryptox"
	"github.com/dmitrijs2005/phishguard/internal/dbx"
	"github.com/dmitrijs2005/phishguard/internal/logging"
	"github.com/google/uuid"
)

// SessionState is the lifecycle state of the encryption session.
type SessionState string

const (
	// StateUninitialized: local and remote setup signals not yet evaluated.
	StateUninitialized SessionState = "uninitialized"
	// StateNotSetup: no salt anywhere and no remote records; Setup applies.
	StateNotSetup SessionState = "not_setup"
	// StateLocked: setup confirmed, key not in memory.
	StateLocked SessionState = "locked"
	// StateUnlocked: key held in memory; encrypt/decrypt available.
	StateUnlocked SessionState = "unlocked"
	// StateError: fatal inconsistency; encryption disabled until resolved
	// externally.
	StateError SessionState = "error"
)

// Session owns the in-memory key and orchestrates setup, unlock and lock.
// The key exists in memory iff the state is StateUnlocked; it is never
// persisted and is wiped on lock and teardown.
//
// All state-changing operations hold the session mutex for their full
// duration, so overlapping unlocks are serialized and a stale outcome can
// never be committed over a newer state.
type Session struct {
	mu sync.Mutex

	client   client.Client
	db       *sql.DB
	verifier *Verifier
	log      logging.Logger

	userID     string
	iterations int
	now        func() time.Time

	state SessionState
	key   []byte
	salt  []byte
}

func NewSession(apiClient client.Client, db *sql.DB, log logging.Logger, userID string, iterations int) *Session {
	return &Session{
		client:     apiClient,
		db:         db,
		verifier:   NewVerifier(apiClient, db, log),
		log:        log.With("component", "session"),
		userID:     userID,
		iterations: iterations,
		now:        time.Now,
		state:      StateUninitialized,
	}
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UserID returns the identity this session is bound to.
func (s *Session) UserID() string { return s.userID }

// Init evaluates the setup signals and moves the session out of
// StateUninitialized. A local verification blob settles it immediately;
// otherwise the remote status decides. On backend unavailability the session
// stays uninitialized so a later Init can retry; on a salt/records
// inconsistency it enters StateError and reports ErrDataInconsistency.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUninitialized {
		return nil
	}

	repo := keymaterial.NewSQLiteRepository(s.db)

	km, err := repo.Get(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("key material lookup: %w", err)
	}
	if km != nil && (km.VerificationBlob != "" || km.Salt != nil) {
		s.salt = km.Salt
		s.state = StateLocked
		return nil
	}

	status, err := s.client.GetEncryptionStatus(ctx)
	if err != nil {
		return fmt.Errorf("encryption status: %w", err)
	}

	switch {
	case status.HasSalt:
		s.salt = status.Salt
		s.state = StateLocked
	case status.HasAnalyses:
		s.state = StateError
		s.log.Error(ctx, "encryption state inconsistent", "user_id", s.userID,
			"has_salt", false, "has_analyses", true)
		return ErrDataInconsistency
	default:
		s.state = StateNotSetup
	}
	return nil
}

// Setup configures encryption for a fresh account: generates the salt,
// derives the key, persists the salt remotely, stores the verification blob
// (and salt) locally, and unlocks the session.
//
// The remote salt write happens before the local one: a salt known remotely
// but not locally is recoverable on the next unlock, the reverse is not.
func (s *Session) Setup(ctx context.Context, passphrase []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNotSetup {
		if s.state == StateLocked || s.state == StateUnlocked {
			return ErrAlreadySetUp
		}
		return fmt.Errorf("setup not allowed in state %q", s.state)
	}

	salt := cryptox.GenerateSalt()
	key := cryptox.DeriveKey(passphrase, salt, s.iterations)

	if err := s.client.SaveSalt(ctx, salt); err != nil {
		common.WipeByteArray(key)
		return fmt.Errorf("save salt: %w", err)
	}

	blob, err := s.buildVerificationBlob(key)
	if err != nil {
		common.WipeByteArray(key)
		return fmt.Errorf("build verification blob: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := keymaterial.NewSQLiteRepository(tx)
		return repo.Save(ctx, &models.KeyMaterial{
			UserID:           s.userID,
			VerificationBlob: blob,
			Salt:             salt,
		})
	})
	if err != nil {
		common.WipeByteArray(key)
		return fmt.Errorf("store key material: %w", err)
	}

	s.key = key
	s.salt = salt
	s.state = StateUnlocked
	s.log.Info(ctx, "encryption set up", "user_id", s.userID)
	return nil
}

// Unlock derives a key from the passphrase and the stored salt and verifies
// it. On ErrInvalidPassphrase the session stays locked and the caller is
// expected to feed the failure into the lockout tracker. On
// ErrVerificationUnavailable the session stays locked with a transient error
// distinct from wrong-passphrase.
func (s *Session) Unlock(ctx context.Context, passphrase []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateUnlocked:
		return nil
	case StateNotSetup:
		return ErrNotSetUp
	case StateLocked:
	default:
		return fmt.Errorf("unlock not allowed in state %q", s.state)
	}

	salt, err := s.obtainSalt(ctx)
	if err != nil {
		return err
	}

	key := cryptox.DeriveKey(passphrase, salt, s.iterations)

	if err := s.verifier.Verify(ctx, s.userID, key); err != nil {
		common.WipeByteArray(key)
		if isUnavailable(err) {
			return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
		}
		s.log.Info(ctx, "unlock rejected", "user_id", s.userID)
		return err
	}

	// Remember the salt on this device for the next session.
	repo := keymaterial.NewSQLiteRepository(s.db)
	if err := repo.SetSalt(ctx, s.userID, salt); err != nil {
		s.log.Warn(ctx, "failed to cache salt locally", "error", err)
	}

	s.key = key
	s.salt = salt
	s.state = StateUnlocked
	s.log.Info(ctx, "session unlocked", "user_id", s.userID)
	return nil
}

// Lock discards the in-memory key and blanks the local verification blob
// while preserving the salt. Idempotent outside StateUnlocked.
func (s *Session) Lock(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUnlocked {
		return nil
	}

	common.WipeByteArray(s.key)
	s.key = nil

	repo := keymaterial.NewSQLiteRepository(s.db)
	if err := repo.ClearBlob(ctx, s.userID); err != nil {
		s.log.Warn(ctx, "failed to clear verification blob", "error", err)
	}

	s.state = StateLocked
	s.log.Info(ctx, "session locked", "user_id", s.userID)
	return nil
}

// Teardown locks the session and returns it to StateUninitialized so the
// next sign-in re-evaluates setup from the local store. The advisory lockout
// cache for this user is dropped along with it.
func (s *Session) Teardown(ctx context.Context) error {
	if err := s.Lock(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := lockouts.NewSQLiteRepository(s.db).Delete(ctx, s.userID); err != nil {
		s.log.Warn(ctx, "failed to drop lockout cache", "error", err)
	}

	s.salt = nil
	s.state = StateUninitialized
	return nil
}

// EncryptAnalysis encrypts the sensitive fields of a and returns the record
// in its storable form. Only callable while unlocked. UserEmail,
// InputContent and MLResult are mandatory.
func (s *Session) EncryptAnalysis(ctx context.Context, a *models.Analysis) (*models.EncryptedAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUnlocked {
		return nil, ErrNotUnlocked
	}
	if a.UserEmail == "" || a.InputContent == "" || a.MLResult == nil {
		return nil, ErrMissingFields
	}

	encrypted := &models.EncryptedAnalysis{
		ID:        a.ID,
		InputType: a.InputType,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if encrypted.ID == "" {
		encrypted.ID = uuid.NewString()
	}
	now := s.now()
	if encrypted.CreatedAt.IsZero() {
		encrypted.CreatedAt = now
	}
	encrypted.UpdatedAt = now

	var err error
	if encrypted.UserEmail, err = cryptox.EncryptField([]byte(a.UserEmail), s.key); err != nil {
		return nil, fmt.Errorf("encrypt user email: %w", err)
	}
	if encrypted.InputContent, err = cryptox.EncryptField([]byte(a.InputContent), s.key); err != nil {
		return nil, fmt.Errorf("encrypt input content: %w", err)
	}
	if a.AnalysisContext != "" {
		if encrypted.AnalysisContext, err = cryptox.EncryptField([]byte(a.AnalysisContext), s.key); err != nil {
			return nil, fmt.Errorf("encrypt analysis context: %w", err)
		}
	}
	if encrypted.MLResult, err = cryptox.EncryptJSONField(a.MLResult, s.key); err != nil {
		return nil, fmt.Errorf("encrypt ml result: %w", err)
	}

	return encrypted, nil
}

// DecryptAnalysis reverses EncryptAnalysis. Only callable while unlocked.
func (s *Session) DecryptAnalysis(ctx context.Context, ea *models.EncryptedAnalysis) (*models.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUnlocked {
		return nil, ErrNotUnlocked
	}

	a := &models.Analysis{
		ID:        ea.ID,
		InputType: ea.InputType,
		CreatedAt: ea.CreatedAt,
		UpdatedAt: ea.UpdatedAt,
	}

	email, err := cryptox.DecryptField(ea.UserEmail, s.key)
	if err != nil {
		return nil, fmt.Errorf("decrypt user email: %w", err)
	}
	a.UserEmail = string(email)

	content, err := cryptox.DecryptField(ea.InputContent, s.key)
	if err != nil {
		return nil, fmt.Errorf("decrypt input content: %w", err)
	}
	a.InputContent = string(content)

	if ea.AnalysisContext != "" {
		analysisContext, err := cryptox.DecryptField(ea.AnalysisContext, s.key)
		if err != nil {
			return nil, fmt.Errorf("decrypt analysis context: %w", err)
		}
		a.AnalysisContext = string(analysisContext)
	}

	var result models.MLResult
	if err := cryptox.DecryptJSONField(ea.MLResult, s.key, &result); err != nil {
		return nil, fmt.Errorf("decrypt ml result: %w", err)
	}
	a.MLResult = &result

	return a, nil
}

// obtainSalt resolves the salt for unlocking: session memory, then the local
// store, then the backend. Called with s.mu held.
func (s *Session) obtainSalt(ctx context.Context) ([]byte, error) {
	if s.salt != nil {
		return s.salt, nil
	}

	repo := keymaterial.NewSQLiteRepository(s.db)
	km, err := repo.Get(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("key material lookup: %w", err)
	}
	if km != nil && km.Salt != nil {
		return km.Salt, nil
	}

	status, err := s.client.GetEncryptionStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	if !status.HasSalt {
		// Locked implies setup happened somewhere; a missing remote salt is
		// the fatal inconsistency, not "not set up".
		return nil, ErrDataInconsistency
	}
	return status.Salt, nil
}

func (s *Session) buildVerificationBlob(key []byte) (string, error) {
	payload := verificationPayload{Timestamp: s.now().UnixMilli(), UserID: s.userID}
	return cryptox.EncryptJSONField(payload, key)
}
