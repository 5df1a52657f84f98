package keymaterial

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

func (r *SQLiteRepository) Get(ctx context.Context, userID string) (*models.KeyMaterial, error) {
	var (
		km                   = models.KeyMaterial{UserID: userID}
		salt                 []byte
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT verification_blob, salt, created_at, updated_at
		FROM key_material WHERE user_id = ?`, userID).
		Scan(&km.VerificationBlob, &salt, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key material: %w", err)
	}
	km.Salt = salt
	km.CreatedAt = time.Unix(createdAt, 0)
	km.UpdatedAt = time.Unix(updatedAt, 0)
	return &km, nil
}

func (r *SQLiteRepository) Has(ctx context.Context, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM key_material
		WHERE user_id = ? AND verification_blob <> ''`, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check key material: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, km *models.KeyMaterial) error {
	now := time.Now().Unix()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO key_material (user_id, verification_blob, salt, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			verification_blob = excluded.verification_blob,
			salt = excluded.salt,
			updated_at = excluded.updated_at`,
		km.UserID, km.VerificationBlob, km.Salt, now, now)
	if err != nil {
		return fmt.Errorf("failed to save key material: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetBlob(ctx context.Context, userID, blob string) error {
	now := time.Now().Unix()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO key_material (user_id, verification_blob, salt, created_at, updated_at)
		VALUES (?, ?, NULL, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			verification_blob = excluded.verification_blob,
			updated_at = excluded.updated_at`,
		userID, blob, now, now)
	if err != nil {
		return fmt.Errorf("failed to set verification blob: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetSalt(ctx context.Context, userID string, salt []byte) error {
	now := time.Now().Unix()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO key_material (user_id, verification_blob, salt, created_at, updated_at)
		VALUES (?, '', ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			salt = excluded.salt,
			updated_at = excluded.updated_at`,
		userID, salt, now, now)
	if err != nil {
		return fmt.Errorf("failed to set salt: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ClearBlob(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE key_material SET verification_blob = '', updated_at = ?
		WHERE user_id = ?`, time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("failed to clear verification blob: %w", err)
	}
	return nil
}
