package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/dmitrijs2005/phishguard/internal/client/client"
	"github.com/dmitrijs2005/phishguard/internal/client/models"
	"github.com/dmitrijs2005/phishguard/internal/logging"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
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

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

// ---- fake backend client ----

// fakeClient implements client.Client for unit tests.
type fakeClient struct {
	StatusRet *client.EncryptionStatus
	StatusErr error

	SaveSaltErr  error
	LastSaltSent []byte

	ListRet []models.EncryptedAnalysis
	ListErr error

	SaveAnalysisErr error
	SavedAnalyses   []models.EncryptedAnalysis

	UnlockRet *models.UnlockAttempts
	UnlockErr error

	ListCalls   int
	StatusCalls int
	UnlockCalls int
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) GetEncryptionStatus(ctx context.Context) (*client.EncryptionStatus, error) {
	f.StatusCalls++
	if f.StatusErr != nil {
		return nil, f.StatusErr
	}
	if f.StatusRet == nil {
		return &client.EncryptionStatus{}, nil
	}
	return f.StatusRet, nil
}

func (f *fakeClient) SaveSalt(ctx context.Context, salt []byte) error {
	f.LastSaltSent = append([]byte(nil), salt...)
	return f.SaveSaltErr
}

func (f *fakeClient) ListAnalyses(ctx context.Context, limit int) ([]models.EncryptedAnalysis, error) {
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	if limit < len(f.ListRet) {
		return f.ListRet[:limit], nil
	}
	return f.ListRet, nil
}

func (f *fakeClient) SaveAnalysis(ctx context.Context, analysis *models.EncryptedAnalysis) error {
	if f.SaveAnalysisErr != nil {
		return f.SaveAnalysisErr
	}
	f.SavedAnalyses = append(f.SavedAnalyses, *analysis)
	return nil
}

func (f *fakeClient) GetUnlockStatus(ctx context.Context) (*models.UnlockAttempts, error) {
	f.UnlockCalls++
	if f.UnlockErr != nil {
		return nil, f.UnlockErr
	}
	if f.UnlockRet == nil {
		return &models.UnlockAttempts{}, nil
	}
	return f.UnlockRet, nil
}
