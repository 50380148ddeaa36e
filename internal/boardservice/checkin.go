package boardservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/models"
	"github.com/checkerhq/checker/internal/stats"
	"github.com/checkerhq/checker/internal/storage"
)

// CheckInParams are the caller-supplied fields for a new check-in.
type CheckInParams struct {
	Date   string // "YYYY-MM-DD"; empty means today in the owner's timezone
	Amount *float64
	Note   *string
}

// RecordCheckIn validates and persists a check-in, then recomputes the
// board's statistics. The session-number count, the insert and the recompute
// all run inside one write transaction, so concurrent check-ins to the same
// board serialize and no recompute result is ever lost.
func (s *Service) RecordCheckIn(ctx context.Context, user *models.User, boardID string, p CheckInParams) (*models.CheckIn, *models.Board, error) {
	today := s.today(user)
	date, err := resolveDate(p.Date, today)
	if err != nil {
		return nil, nil, err
	}

	var (
		checkIn *models.CheckIn
		board   *models.Board
	)
	err = s.withRetry(ctx, func(tx storage.Tx) error {
		b, err := tx.Board(user.ID, boardID)
		if err != nil {
			return err
		}
		ci, err := s.insertCheckIn(tx, b, user.ID, date, p)
		if err != nil {
			return err
		}
		if err := s.recomputeBoard(tx, b, today); err != nil {
			return err
		}
		checkIn, board = ci, b
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.publishCheckIn("created", board.ID, checkIn.ID)
	return checkIn, board, nil
}

// QuickCheckIn records a check-in for today against a board resolved by id
// or display name. Archived boards are excluded from resolution.
func (s *Service) QuickCheckIn(ctx context.Context, user *models.User, boardID, boardName string, amount *float64, note *string) (*models.CheckIn, *models.Board, error) {
	today := s.today(user)
	p := CheckInParams{Amount: amount, Note: note}

	var (
		checkIn *models.CheckIn
		board   *models.Board
	)
	err := s.withRetry(ctx, func(tx storage.Tx) error {
		var b *models.Board
		var err error
		switch {
		case boardID != "":
			b, err = tx.Board(user.ID, boardID)
			if err == nil && b.IsArchived {
				err = apperr.ErrNotFound
			}
		case boardName != "":
			b, err = tx.BoardByName(user.ID, boardName)
		default:
			err = apperr.ErrNotFound
		}
		if err != nil {
			return err
		}
		ci, err := s.insertCheckIn(tx, b, user.ID, today, p)
		if err != nil {
			return err
		}
		if err := s.recomputeBoard(tx, b, today); err != nil {
			return err
		}
		checkIn, board = ci, b
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.publishCheckIn("created", board.ID, checkIn.ID)
	return checkIn, board, nil
}

// insertCheckIn assigns the session number from the same-transaction count
// and writes the row.
func (s *Service) insertCheckIn(tx storage.Tx, board *models.Board, userID, date string, p CheckInParams) (*models.CheckIn, error) {
	sameDay, err := tx.CountCheckIns(board.ID, date)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	ci := &models.CheckIn{
		ID:            uuid.NewString(),
		BoardID:       board.ID,
		UserID:        userID,
		Date:          date,
		Timestamp:     now,
		Amount:        p.Amount,
		Note:          p.Note,
		SessionNumber: sameDay + 1,
		CreatedAt:     now,
	}
	if err := tx.InsertCheckIn(ci); err != nil {
		return nil, err
	}
	return ci, nil
}

// resolveDate normalizes a requested date and rejects dates after today.
func resolveDate(requested, today string) (string, error) {
	if requested == "" {
		return today, nil
	}
	parsed, err := time.Parse(stats.DateLayout, requested)
	if err != nil {
		return "", ErrInvalidDate
	}
	date := parsed.Format(stats.DateLayout)
	if date > today {
		return "", apperr.ErrFutureDate
	}
	return date, nil
}

// ListCheckIns returns a board's check-ins, newest first.
func (s *Service) ListCheckIns(ctx context.Context, user *models.User, boardID string, f storage.CheckInFilter) ([]models.CheckIn, error) {
	board, err := s.store.GetBoard(ctx, user.ID, boardID)
	if err != nil {
		return nil, err
	}
	return s.store.ListCheckIns(ctx, board.ID, f)
}

// GetCheckIn returns a check-in owned by the user.
func (s *Service) GetCheckIn(ctx context.Context, user *models.User, id string) (*models.CheckIn, error) {
	return s.store.GetCheckIn(ctx, user.ID, id)
}

// CheckInEdit holds partial edits to a check-in; nil means unchanged.
type CheckInEdit struct {
	Amount *float64
	Note   *string
}

// UpdateCheckIn edits amount and note. Date membership never changes, so the
// board's statistics are left untouched.
func (s *Service) UpdateCheckIn(ctx context.Context, user *models.User, id string, e CheckInEdit) (*models.CheckIn, error) {
	ci, err := s.store.GetCheckIn(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	if e.Amount != nil {
		ci.Amount = e.Amount
	}
	if e.Note != nil {
		ci.Note = e.Note
	}
	if err := s.store.UpdateCheckIn(ctx, ci); err != nil {
		return nil, err
	}
	return ci, nil
}

// DeleteCheckIn removes a check-in and recomputes the owning board's
// statistics in the same transaction. Remaining same-day session numbers
// keep their gaps.
func (s *Service) DeleteCheckIn(ctx context.Context, user *models.User, id string) error {
	var boardID string
	err := s.withRetry(ctx, func(tx storage.Tx) error {
		ci, err := tx.GetCheckIn(user.ID, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteCheckIn(ci.ID); err != nil {
			return err
		}
		b, err := tx.Board(user.ID, ci.BoardID)
		if err != nil {
			return err
		}
		if err := s.recomputeBoard(tx, b, s.today(user)); err != nil {
			return err
		}
		boardID = b.ID
		return nil
	})
	if err != nil {
		return err
	}

	s.publishCheckIn("deleted", boardID, id)
	return nil
}
