package storage

import (
	"context"
	"time"

	"github.com/checkerhq/checker/internal/models"
)

// CheckInFilter narrows check-in listings.
type CheckInFilter struct {
	StartDate string // inclusive, "" for unbounded
	EndDate   string // inclusive, "" for unbounded
	Limit     int    // 0 for unbounded
}

// Store defines the persistence operations the services depend on.
// Consumers should use this interface rather than the concrete *DB type to
// facilitate testing.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error

	// API keys.
	CreateAPIKey(ctx context.Context, k *models.APIKey) error
	GetAPIKeyByHash(ctx context.Context, prefix, hash string) (*models.APIKey, error)
	ListAPIKeys(ctx context.Context, userID string) ([]models.APIKey, error)
	RevokeAPIKey(ctx context.Context, userID, id string, at time.Time) error
	TouchAPIKey(ctx context.Context, id string, at time.Time) error

	// Boards.
	CreateBoard(ctx context.Context, b *models.Board) error
	GetBoard(ctx context.Context, userID, id string) (*models.Board, error)
	GetBoardByName(ctx context.Context, userID, name string) (*models.Board, error)
	ListBoards(ctx context.Context, userID string, includeArchived bool) ([]models.Board, error)
	UpdateBoard(ctx context.Context, b *models.Board) error
	DeleteBoard(ctx context.Context, userID, id string) error

	// Check-in reads outside the write path.
	ListCheckIns(ctx context.Context, boardID string, f CheckInFilter) ([]models.CheckIn, error)
	GetCheckIn(ctx context.Context, userID, id string) (*models.CheckIn, error)
	UpdateCheckIn(ctx context.Context, ci *models.CheckIn) error
	DistinctDates(ctx context.Context, boardID string) ([]string, error)
	HasCheckInOn(ctx context.Context, boardID, date string) (bool, error)

	// InTx runs fn inside one write transaction; every check-in insert or
	// delete plus its aggregate recompute must go through here.
	InTx(ctx context.Context, fn func(Tx) error) error

	Close() error
}

// Tx exposes the operations available inside a write transaction. The
// same-day count for session numbering, the insert/delete itself, and the
// reads feeding the aggregate recompute all observe the same snapshot.
type Tx interface {
	Board(userID, boardID string) (*models.Board, error)
	BoardByName(userID, name string) (*models.Board, error)
	CountCheckIns(boardID, date string) (int, error)
	InsertCheckIn(ci *models.CheckIn) error
	GetCheckIn(userID, id string) (*models.CheckIn, error)
	DeleteCheckIn(id string) error
	TotalCheckIns(boardID string) (int, error)
	DistinctDates(boardID string) ([]string, error)
	UpdateBoardStats(b *models.Board) error
}

// Verify the concrete types satisfy the interfaces at compile time.
var (
	_ Store = (*DB)(nil)
	_ Tx    = (*sqlTx)(nil)
)
