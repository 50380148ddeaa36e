package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/models"
)

const userColumns = `id, email, name, password_hash, timezone, theme, created_at, updated_at`

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	var name sql.NullString
	if err := s.Scan(&u.ID, &u.Email, &name, &u.PasswordHash, &u.Timezone, &u.Theme, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Name = strPtr(name)
	return &u, nil
}

// CreateUser inserts a new user row.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, timezone, theme, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, nullStr(u.Name), u.PasswordHash, u.Timezone, u.Theme, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("storage: create user: %w", err)
	}
	return nil
}

// GetUser returns a user by id.
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get user by email: %w", err)
	}
	return u, nil
}

// UpdateUser persists the mutable profile fields.
func (db *DB) UpdateUser(ctx context.Context, u *models.User) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE users SET name = ?, timezone = ?, theme = ?, updated_at = ?
		WHERE id = ?
	`, nullStr(u.Name), u.Timezone, u.Theme, u.UpdatedAt, u.ID)
	if err != nil {
		return fmt.Errorf("storage: update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
