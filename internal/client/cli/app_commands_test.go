package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/phishguard/internal/client/auth"
	"github.com/dmitrijs2005/phishguard/internal/client/client"
	"github.com/dmitrijs2005/phishguard/internal/client/config"
	"github.com/dmitrijs2005/phishguard/internal/client/models"
	"github.com/dmitrijs2005/phishguard/internal/client/pubsub"
	"github.com/dmitrijs2005/phishguard/internal/client/repositories/lockouts"
	"github.com/dmitrijs2005/phishguard/internal/client/services"
	"github.com/dmitrijs2005/phishguard/internal/logging"

	_ "modernc.org/sqlite"
)

func setupAppDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.NewReplacer("/", "_", "#", "_").Replace(t.Name()))
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE key_material (
  user_id           TEXT PRIMARY KEY,
  verification_blob TEXT NOT NULL DEFAULT '',
  salt              BLOB,
  created_at        INTEGER NOT NULL,
  updated_at        INTEGER NOT NULL
);
CREATE TABLE lockout_cache (
  user_id      TEXT PRIMARY KEY,
  locked_until INTEGER,
  attempts     INTEGER NOT NULL DEFAULT 0,
  updated_at   INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

// fakeBackend implements client.Client for App tests.
type fakeBackend struct {
	statusRet *client.EncryptionStatus
	listRet   []models.EncryptedAnalysis
	unlockRet *models.UnlockAttempts
}

func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) GetEncryptionStatus(ctx context.Context) (*client.EncryptionStatus, error) {
	if f.statusRet == nil {
		return &client.EncryptionStatus{}, nil
	}
	return f.statusRet, nil
}

func (f *fakeBackend) SaveSalt(ctx context.Context, salt []byte) error { return nil }

func (f *fakeBackend) ListAnalyses(ctx context.Context, limit int) ([]models.EncryptedAnalysis, error) {
	return f.listRet, nil
}

func (f *fakeBackend) SaveAnalysis(ctx context.Context, analysis *models.EncryptedAnalysis) error {
	return nil
}

func (f *fakeBackend) GetUnlockStatus(ctx context.Context) (*models.UnlockAttempts, error) {
	if f.unlockRet == nil {
		return &models.UnlockAttempts{}, nil
	}
	return f.unlockRet, nil
}

func newTestApp(t *testing.T, fb *fakeBackend) (*App, *sql.DB) {
	t.Helper()
	db := setupAppDB(t)
	log := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	cfg := &config.Config{}
	cfg.LoadDefaults()

	return &App{
		config:    cfg,
		apiClient: fb,
		session:   services.NewSession(fb, db, log, "u1", 1000),
		tracker:   services.NewLockoutTracker(fb, db, pubsub.NewChannelBus(), log, "u1"),
		identity:  &auth.Identity{UserID: "u1", Email: "u1@example.com"},
		log:       log,
		reader:    bufio.NewReader(strings.NewReader("")),
	}, db
}

// A lock the cache still believes in must not block the attempt itself; the
// backend owns enforcement and may have reset the counter since.
func TestUnlock_CachedLockIsAdvisoryOnly(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return []byte("correct horse"), nil
	}

	fb := &fakeBackend{}
	app, db := newTestApp(t, fb)
	ctx := context.Background()

	require.NoError(t, app.session.Init(ctx))
	require.NoError(t, app.session.Setup(ctx, []byte("correct horse")))
	require.NoError(t, app.session.Lock(ctx))

	// stale cached lock; the backend reports no failed attempts
	until := time.Now().Add(time.Hour)
	require.NoError(t, lockouts.NewSQLiteRepository(db).Save(ctx, &models.LockoutCacheEntry{
		UserID: "u1", Attempts: 5, LockedUntil: &until,
	}))

	require.NoError(t, app.Unlock(ctx))
	require.Equal(t, services.StateUnlocked, app.session.State())
}
