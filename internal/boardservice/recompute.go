package boardservice

import (
	"context"
	"errors"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/models"
	"github.com/checkerhq/checker/internal/stats"
	"github.com/checkerhq/checker/internal/storage"
)

// maxTxAttempts bounds retries when the write lock cannot be acquired.
const maxTxAttempts = 3

// withRetry reruns fn in a fresh transaction on lock contention. fn must be
// restartable: any captured results have to be assigned on the final pass.
func (s *Service) withRetry(ctx context.Context, fn func(storage.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = s.store.InTx(ctx, fn)
		if !errors.Is(err, apperr.ErrConflict) {
			return err
		}
	}
	return err
}

// recomputeBoard fully re-derives the board's denormalized statistics from
// its current check-in set, inside the transaction that changed the set.
//
// This is a full recompute rather than an incremental delta: O(check-ins per
// board) per write, which stays cheap because boards are per-user and
// bounded. longestStreak only ever ratchets upward; deleting check-ins that
// shorten a historical streak does not lower the recorded personal best.
func (s *Service) recomputeBoard(tx storage.Tx, board *models.Board, today string) error {
	total, err := tx.TotalCheckIns(board.ID)
	if err != nil {
		return err
	}
	dates, err := tx.DistinctDates(board.ID)
	if err != nil {
		return err
	}

	board.TotalCheckIns = total
	board.LastCheckInDate = nil
	if len(dates) > 0 {
		// DistinctDates returns dates newest first.
		last := dates[0]
		board.LastCheckInDate = &last
	}
	board.CurrentStreak = stats.CurrentStreak(dates, today)
	if board.CurrentStreak > board.LongestStreak {
		board.LongestStreak = board.CurrentStreak
	}
	board.UpdatedAt = s.now().UTC()

	return tx.UpdateBoardStats(board)
}

// Recompute re-derives a board's statistics outside the normal write path,
// for repair after manual data fixes. It is idempotent: running it twice
// with no intervening writes yields identical board state.
func (s *Service) Recompute(ctx context.Context, user *models.User, boardID string) (*models.Board, error) {
	var board *models.Board
	err := s.withRetry(ctx, func(tx storage.Tx) error {
		b, err := tx.Board(user.ID, boardID)
		if err != nil {
			return err
		}
		if err := s.recomputeBoard(tx, b, s.today(user)); err != nil {
			return err
		}
		board = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return board, nil
}
