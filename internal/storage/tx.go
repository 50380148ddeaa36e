package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/models"
)

// sqlTx implements Tx on top of a sql.Tx opened with an immediate write lock.
type sqlTx struct {
	ctx context.Context
	tx  *sql.Tx
}

// Board returns a board owned by the user, read under the write lock.
func (t *sqlTx) Board(userID, boardID string) (*models.Board, error) {
	b, err := scanBoard(t.tx.QueryRowContext(t.ctx, `
		SELECT `+boardColumns+` FROM boards WHERE id = ? AND user_id = ?
	`, boardID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: tx board: %w", err)
	}
	return b, nil
}

// BoardByName returns an active board by display name.
func (t *sqlTx) BoardByName(userID, name string) (*models.Board, error) {
	b, err := scanBoard(t.tx.QueryRowContext(t.ctx, `
		SELECT `+boardColumns+` FROM boards WHERE user_id = ? AND name = ? AND is_archived = 0
	`, userID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: tx board by name: %w", err)
	}
	return b, nil
}

// CountCheckIns returns the number of check-ins for board+date. Session
// numbers are derived from this count inside the same transaction as the
// insert, so concurrent same-day check-ins cannot collide.
func (t *sqlTx) CountCheckIns(boardID, date string) (int, error) {
	var n int
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT COUNT(*) FROM check_ins WHERE board_id = ? AND date = ?
	`, boardID, date).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage: count check-ins: %w", err)
	}
	return n, nil
}

// InsertCheckIn writes a new check-in row.
func (t *sqlTx) InsertCheckIn(ci *models.CheckIn) error {
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO check_ins (id, board_id, user_id, date, timestamp, amount, note, session_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ci.ID, ci.BoardID, ci.UserID, ci.Date, ci.Timestamp, nullFloat(ci.Amount),
		nullStr(ci.Note), ci.SessionNumber, ci.CreatedAt)
	if err != nil {
		return fmt.Errorf("storage: insert check-in: %w", err)
	}
	return nil
}

// GetCheckIn returns a check-in owned by the user.
func (t *sqlTx) GetCheckIn(userID, id string) (*models.CheckIn, error) {
	ci, err := scanCheckIn(t.tx.QueryRowContext(t.ctx, `
		SELECT `+checkInColumns+` FROM check_ins WHERE id = ? AND user_id = ?
	`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: tx get check-in: %w", err)
	}
	return ci, nil
}

// DeleteCheckIn removes a check-in row. Sibling session numbers keep their
// gaps; they are never renumbered.
func (t *sqlTx) DeleteCheckIn(id string) error {
	res, err := t.tx.ExecContext(t.ctx, `DELETE FROM check_ins WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("storage: delete check-in: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// TotalCheckIns returns the board's check-in count.
func (t *sqlTx) TotalCheckIns(boardID string) (int, error) {
	var n int
	err := t.tx.QueryRowContext(t.ctx, `SELECT COUNT(*) FROM check_ins WHERE board_id = ?`, boardID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("storage: total check-ins: %w", err)
	}
	return n, nil
}

// DistinctDates returns the board's distinct check-in dates.
func (t *sqlTx) DistinctDates(boardID string) ([]string, error) {
	rows, err := t.tx.QueryContext(t.ctx, `
		SELECT DISTINCT date FROM check_ins WHERE board_id = ? ORDER BY date DESC
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("storage: tx distinct dates: %w", err)
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

// UpdateBoardStats writes the four derived fields in one statement, so the
// aggregate state commits atomically with the triggering check-in write.
func (t *sqlTx) UpdateBoardStats(b *models.Board) error {
	_, err := t.tx.ExecContext(t.ctx, `
		UPDATE boards SET current_streak = ?, longest_streak = ?, total_check_ins = ?,
			last_check_in_date = ?, updated_at = ?
		WHERE id = ?
	`, b.CurrentStreak, b.LongestStreak, b.TotalCheckIns, nullStr(b.LastCheckInDate), b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("storage: update board stats: %w", err)
	}
	return nil
}
