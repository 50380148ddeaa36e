package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/models"
)

const boardColumns = `id, user_id, name, description, emoji, color, unit_type, unit, target_amount,
	current_streak, longest_streak, total_check_ins, is_archived, archived_at, last_check_in_date,
	created_at, updated_at`

func scanBoard(s scanner) (*models.Board, error) {
	var b models.Board
	var description, unit, lastDate sql.NullString
	var target sql.NullFloat64
	var archivedAt sql.NullTime
	if err := s.Scan(&b.ID, &b.UserID, &b.Name, &description, &b.Emoji, &b.Color,
		&b.UnitType, &unit, &target, &b.CurrentStreak, &b.LongestStreak, &b.TotalCheckIns,
		&b.IsArchived, &archivedAt, &lastDate, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Description = strPtr(description)
	b.Unit = strPtr(unit)
	b.TargetAmount = floatPtr(target)
	b.ArchivedAt = timePtr(archivedAt)
	b.LastCheckInDate = strPtr(lastDate)
	return &b, nil
}

// CreateBoard inserts a new board with zeroed statistics.
func (db *DB) CreateBoard(ctx context.Context, b *models.Board) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO boards (id, user_id, name, description, emoji, color, unit_type, unit,
			target_amount, current_streak, longest_streak, total_check_ins, is_archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, 0, 0, ?, ?)
	`, b.ID, b.UserID, b.Name, nullStr(b.Description), b.Emoji, b.Color, b.UnitType,
		nullStr(b.Unit), nullFloat(b.TargetAmount), b.CreatedAt, b.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("storage: create board: %w", err)
	}
	return nil
}

// GetBoard returns a board owned by the user.
func (db *DB) GetBoard(ctx context.Context, userID, id string) (*models.Board, error) {
	b, err := scanBoard(db.conn.QueryRowContext(ctx, `
		SELECT `+boardColumns+` FROM boards WHERE id = ? AND user_id = ?
	`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get board: %w", err)
	}
	return b, nil
}

// GetBoardByName returns an active board by its display name.
func (db *DB) GetBoardByName(ctx context.Context, userID, name string) (*models.Board, error) {
	b, err := scanBoard(db.conn.QueryRowContext(ctx, `
		SELECT `+boardColumns+` FROM boards WHERE user_id = ? AND name = ? AND is_archived = 0
	`, userID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get board by name: %w", err)
	}
	return b, nil
}

// ListBoards returns the user's boards, most recently updated first.
func (db *DB) ListBoards(ctx context.Context, userID string, includeArchived bool) ([]models.Board, error) {
	q := `SELECT ` + boardColumns + ` FROM boards WHERE user_id = ?`
	if !includeArchived {
		q += ` AND is_archived = 0`
	}
	q += ` ORDER BY updated_at DESC`

	rows, err := db.conn.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("storage: list boards: %w", err)
	}
	defer rows.Close()

	var out []models.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// UpdateBoard persists the descriptive and archival fields. The derived
// statistics are only written through Tx.UpdateBoardStats.
func (db *DB) UpdateBoard(ctx context.Context, b *models.Board) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE boards SET name = ?, description = ?, emoji = ?, color = ?, unit_type = ?,
			unit = ?, target_amount = ?, is_archived = ?, archived_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, b.Name, nullStr(b.Description), b.Emoji, b.Color, b.UnitType, nullStr(b.Unit),
		nullFloat(b.TargetAmount), b.IsArchived, nullTime(b.ArchivedAt), b.UpdatedAt, b.ID, b.UserID)
	if isUniqueViolation(err) {
		return apperr.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("storage: update board: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteBoard hard-deletes a board; check-ins cascade.
func (db *DB) DeleteBoard(ctx context.Context, userID, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM boards WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("storage: delete board: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
