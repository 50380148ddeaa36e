package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/models"
)

const checkInColumns = `id, board_id, user_id, date, timestamp, amount, note, session_number, created_at`

func scanCheckIn(s scanner) (*models.CheckIn, error) {
	var ci models.CheckIn
	var amount sql.NullFloat64
	var note sql.NullString
	if err := s.Scan(&ci.ID, &ci.BoardID, &ci.UserID, &ci.Date, &ci.Timestamp,
		&amount, &note, &ci.SessionNumber, &ci.CreatedAt); err != nil {
		return nil, err
	}
	ci.Amount = floatPtr(amount)
	ci.Note = strPtr(note)
	return &ci, nil
}

// ListCheckIns returns a board's check-ins, newest date first.
func (db *DB) ListCheckIns(ctx context.Context, boardID string, f CheckInFilter) ([]models.CheckIn, error) {
	q := `SELECT ` + checkInColumns + ` FROM check_ins WHERE board_id = ?`
	args := []any{boardID}
	if f.StartDate != "" {
		q += ` AND date >= ?`
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		q += ` AND date <= ?`
		args = append(args, f.EndDate)
	}
	q += ` ORDER BY date DESC, session_number DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list check-ins: %w", err)
	}
	defer rows.Close()

	var out []models.CheckIn
	for rows.Next() {
		ci, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ci)
	}
	return out, rows.Err()
}

// GetCheckIn returns a check-in owned by the user.
func (db *DB) GetCheckIn(ctx context.Context, userID, id string) (*models.CheckIn, error) {
	ci, err := scanCheckIn(db.conn.QueryRowContext(ctx, `
		SELECT `+checkInColumns+` FROM check_ins WHERE id = ? AND user_id = ?
	`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get check-in: %w", err)
	}
	return ci, nil
}

// UpdateCheckIn persists amount and note edits. Date membership never changes
// here, so no aggregate recompute is needed.
func (db *DB) UpdateCheckIn(ctx context.Context, ci *models.CheckIn) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE check_ins SET amount = ?, note = ? WHERE id = ? AND user_id = ?
	`, nullFloat(ci.Amount), nullStr(ci.Note), ci.ID, ci.UserID)
	if err != nil {
		return fmt.Errorf("storage: update check-in: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DistinctDates returns the distinct calendar dates with at least one
// check-in for the board.
func (db *DB) DistinctDates(ctx context.Context, boardID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT date FROM check_ins WHERE board_id = ? ORDER BY date DESC
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("storage: distinct dates: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// HasCheckInOn reports whether the board has any check-in on the given date.
func (db *DB) HasCheckInOn(ctx context.Context, boardID, date string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM check_ins WHERE board_id = ? AND date = ?
	`, boardID, date).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage: has check-in: %w", err)
	}
	return n > 0, nil
}
