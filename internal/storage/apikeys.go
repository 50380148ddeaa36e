package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/models"
)

const apiKeyColumns = `id, user_id, name, key_hash, key_prefix, scopes, expires_at, last_used_at, is_revoked, revoked_at, created_at`

func scanAPIKey(s scanner) (*models.APIKey, error) {
	var k models.APIKey
	var scopes string
	var expiresAt, lastUsedAt, revokedAt sql.NullTime
	if err := s.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &scopes,
		&expiresAt, &lastUsedAt, &k.IsRevoked, &revokedAt, &k.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(scopes), &k.Scopes); err != nil {
		return nil, fmt.Errorf("storage: decode scopes: %w", err)
	}
	k.ExpiresAt = timePtr(expiresAt)
	k.LastUsedAt = timePtr(lastUsedAt)
	k.RevokedAt = timePtr(revokedAt)
	return &k, nil
}

// CreateAPIKey inserts a new API key row. Only the hash of the raw key is
// ever persisted.
func (db *DB) CreateAPIKey(ctx context.Context, k *models.APIKey) error {
	scopes, _ := json.Marshal(k.Scopes)
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO api_keys (id, user_id, name, key_hash, key_prefix, scopes, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, k.ID, k.UserID, k.Name, k.KeyHash, k.KeyPrefix, string(scopes), nullTime(k.ExpiresAt), k.CreatedAt)
	if err != nil {
		return fmt.Errorf("storage: create api key: %w", err)
	}
	return nil
}

// GetAPIKeyByHash looks up an unrevoked key by its prefix and hash.
func (db *DB) GetAPIKeyByHash(ctx context.Context, prefix, hash string) (*models.APIKey, error) {
	k, err := scanAPIKey(db.conn.QueryRowContext(ctx, `
		SELECT `+apiKeyColumns+` FROM api_keys
		WHERE key_prefix = ? AND key_hash = ? AND is_revoked = 0
	`, prefix, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get api key: %w", err)
	}
	return k, nil
}

// ListAPIKeys returns every key owned by the user, newest first.
func (db *DB) ListAPIKeys(ctx context.Context, userID string) ([]models.APIKey, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+apiKeyColumns+` FROM api_keys WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("storage: list api keys: %w", err)
	}
	defer rows.Close()

	var out []models.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *k)
	}
	return out, rows.Err()
}

// RevokeAPIKey marks a key as revoked. The row stays for audit.
func (db *DB) RevokeAPIKey(ctx context.Context, userID, id string, at time.Time) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE api_keys SET is_revoked = 1, revoked_at = ?
		WHERE id = ? AND user_id = ? AND is_revoked = 0
	`, at, id, userID)
	if err != nil {
		return fmt.Errorf("storage: revoke api key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// TouchAPIKey records key usage.
func (db *DB) TouchAPIKey(ctx context.Context, id string, at time.Time) error {
	_, err := db.conn.ExecContext(ctx, `UPDATE api_keys SET last_used_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("storage: touch api key: %w", err)
	}
	return nil
}
