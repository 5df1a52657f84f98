package lockouts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/phishguard/internal/client/models"
	"github.com/dmitrijs2005/phishguard/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, userID string) (*models.LockoutCacheEntry, error) {
	var (
		entry       = models.LockoutCacheEntry{UserID: userID}
		lockedUntil sql.NullInt64
		updatedAt   int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT locked_until, attempts, updated_at
		FROM lockout_cache WHERE user_id = ?`, userID).
		Scan(&lockedUntil, &entry.Attempts, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lockout cache: %w", err)
	}
	if lockedUntil.Valid {
		t := time.Unix(lockedUntil.Int64, 0)
		entry.LockedUntil = &t
	}
	entry.UpdatedAt = time.Unix(updatedAt, 0)
	return &entry, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, entry *models.LockoutCacheEntry) error {
	var lockedUntil sql.NullInt64
	if entry.LockedUntil != nil {
		lockedUntil = sql.NullInt64{Int64: entry.LockedUntil.Unix(), Valid: true}
	}
	updatedAt := entry.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lockout_cache (user_id, locked_until, attempts, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			locked_until = excluded.locked_until,
			attempts = excluded.attempts,
			updated_at = excluded.updated_at`,
		entry.UserID, lockedUntil, entry.Attempts, updatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save lockout cache: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM lockout_cache WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete lockout cache: %w", err)
	}
	return nil
}
