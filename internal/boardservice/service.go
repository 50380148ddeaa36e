// Package boardservice coordinates boards, check-ins and their derived
// statistics on top of the storage layer.
package boardservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/checkerhq/checker/internal/models"
	"github.com/checkerhq/checker/internal/stats"
	"github.com/checkerhq/checker/internal/storage"
)

// Validation errors the HTTP layer maps to 400 responses.
var (
	ErrInvalidDate     = errors.New("invalid date format, want YYYY-MM-DD")
	ErrInvalidTimezone = errors.New("unknown timezone")
)

// Board presentation defaults.
const (
	defaultEmoji = "📊"
	defaultColor = "#3B82F6"
)

// EventSink receives domain change notifications. The SSE broker implements
// it; a nil sink disables publishing.
type EventSink interface {
	PublishCheckInEvent(kind, boardID, checkInID string)
	PublishBoardEvent(kind, boardID string)
}

// Service coordinates storage operations and the aggregate recompute.
type Service struct {
	store  storage.Store
	events EventSink
	now    func() time.Time
}

// Option is a functional option for configuring the service.
type Option func(*Service)

// WithEvents attaches an event sink.
func WithEvents(sink EventSink) Option {
	return func(s *Service) { s.events = sink }
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new board service.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// today resolves the current calendar date in the user's timezone.
func (s *Service) today(user *models.User) string {
	return stats.Today(s.now(), user.Location())
}

// CurrentYear returns the calendar year at this instant in the user's
// timezone, for heatmap defaults.
func (s *Service) CurrentYear(user *models.User) int {
	return s.now().In(user.Location()).Year()
}

func (s *Service) publishCheckIn(kind, boardID, checkInID string) {
	if s.events != nil {
		s.events.PublishCheckInEvent(kind, boardID, checkInID)
	}
}

func (s *Service) publishBoard(kind, boardID string) {
	if s.events != nil {
		s.events.PublishBoardEvent(kind, boardID)
	}
}

// BoardParams are the caller-supplied fields for a new board.
type BoardParams struct {
	Name         string
	Description  *string
	Emoji        string
	Color        string
	UnitType     string
	Unit         *string
	TargetAmount *float64
}

// CreateBoard creates a board with zeroed statistics.
func (s *Service) CreateBoard(ctx context.Context, user *models.User, p BoardParams) (*models.Board, error) {
	if p.Emoji == "" {
		p.Emoji = defaultEmoji
	}
	if p.Color == "" {
		p.Color = defaultColor
	}
	now := s.now().UTC()
	board := &models.Board{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Name:         p.Name,
		Description:  p.Description,
		Emoji:        p.Emoji,
		Color:        p.Color,
		UnitType:     p.UnitType,
		Unit:         p.Unit,
		TargetAmount: p.TargetAmount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateBoard(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

// GetBoard returns a board owned by the user.
func (s *Service) GetBoard(ctx context.Context, user *models.User, id string) (*models.Board, error) {
	return s.store.GetBoard(ctx, user.ID, id)
}

// ListBoards returns the user's boards, optionally including archived ones.
func (s *Service) ListBoards(ctx context.Context, user *models.User, includeArchived bool) ([]models.Board, error) {
	return s.store.ListBoards(ctx, user.ID, includeArchived)
}

// BoardUpdate holds partial edits to a board's descriptive fields; nil means
// unchanged. Edits here never touch the derived statistics.
type BoardUpdate struct {
	Name         *string
	Description  *string
	Emoji        *string
	Color        *string
	UnitType     *string
	Unit         *string
	TargetAmount *float64
}

// UpdateBoard applies descriptive edits to a board.
func (s *Service) UpdateBoard(ctx context.Context, user *models.User, id string, u BoardUpdate) (*models.Board, error) {
	board, err := s.store.GetBoard(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		board.Name = *u.Name
	}
	if u.Description != nil {
		board.Description = u.Description
	}
	if u.Emoji != nil {
		board.Emoji = *u.Emoji
	}
	if u.Color != nil {
		board.Color = *u.Color
	}
	if u.UnitType != nil {
		board.UnitType = *u.UnitType
	}
	if u.Unit != nil {
		board.Unit = u.Unit
	}
	if u.TargetAmount != nil {
		board.TargetAmount = u.TargetAmount
	}
	board.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateBoard(ctx, board); err != nil {
		return nil, err
	}
	s.publishBoard("updated", board.ID)
	return board, nil
}

// DeleteBoard hard-deletes a board; its check-ins cascade away.
func (s *Service) DeleteBoard(ctx context.Context, user *models.User, id string) error {
	if err := s.store.DeleteBoard(ctx, user.ID, id); err != nil {
		return err
	}
	s.publishBoard("deleted", id)
	return nil
}

// ArchiveBoard soft-retires a board. Archived boards keep their check-ins
// and statistics and can be restored.
func (s *Service) ArchiveBoard(ctx context.Context, user *models.User, id string) (*models.Board, error) {
	board, err := s.store.GetBoard(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	board.IsArchived = true
	board.ArchivedAt = &now
	board.UpdatedAt = now
	if err := s.store.UpdateBoard(ctx, board); err != nil {
		return nil, err
	}
	s.publishBoard("updated", board.ID)
	return board, nil
}

// RestoreBoard reverses an archive.
func (s *Service) RestoreBoard(ctx context.Context, user *models.User, id string) (*models.Board, error) {
	board, err := s.store.GetBoard(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	board.IsArchived = false
	board.ArchivedAt = nil
	board.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateBoard(ctx, board); err != nil {
		return nil, err
	}
	s.publishBoard("updated", board.ID)
	return board, nil
}

// Heatmap projects a board's check-ins in [startDate, endDate] into per-day
// intensity buckets. Dates without check-ins are omitted.
func (s *Service) Heatmap(ctx context.Context, user *models.User, boardID, startDate, endDate string) (*models.Board, []stats.Day, error) {
	board, err := s.store.GetBoard(ctx, user.ID, boardID)
	if err != nil {
		return nil, nil, err
	}
	checkIns, err := s.store.ListCheckIns(ctx, board.ID, storage.CheckInFilter{
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return nil, nil, err
	}
	return board, stats.Heatmap(checkIns, board.TargetAmount), nil
}

// BoardStats is the read-only statistics view of a board.
type BoardStats struct {
	CurrentStreak     int     `json:"currentStreak"`
	LongestStreak     int     `json:"longestStreak"`
	TotalCheckIns     int     `json:"totalCheckIns"`
	CompletionRate30d int     `json:"completionRate30d"`
	LastCheckInDate   *string `json:"lastCheckInDate"`
}

// Stats returns the persisted aggregates plus the derived 30-day completion
// rate for a board.
func (s *Service) Stats(ctx context.Context, user *models.User, boardID string) (*BoardStats, error) {
	board, err := s.store.GetBoard(ctx, user.ID, boardID)
	if err != nil {
		return nil, err
	}
	dates, err := s.store.DistinctDates(ctx, board.ID)
	if err != nil {
		return nil, err
	}
	return &BoardStats{
		CurrentStreak:     board.CurrentStreak,
		LongestStreak:     board.LongestStreak,
		TotalCheckIns:     board.TotalCheckIns,
		CompletionRate30d: stats.CompletionRate30d(dates, s.today(user)),
		LastCheckInDate:   board.LastCheckInDate,
	}, nil
}

// BoardStatus is one row of the quick status view.
type BoardStatus struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Emoji          string `json:"emoji"`
	CheckedInToday bool   `json:"checkedInToday"`
	CurrentStreak  int    `json:"currentStreak"`
}

// QuickStatus reports, per active board, whether the user checked in today.
func (s *Service) QuickStatus(ctx context.Context, user *models.User) ([]BoardStatus, error) {
	boards, err := s.store.ListBoards(ctx, user.ID, false)
	if err != nil {
		return nil, err
	}
	today := s.today(user)
	out := make([]BoardStatus, 0, len(boards))
	for _, b := range boards {
		checked, err := s.store.HasCheckInOn(ctx, b.ID, today)
		if err != nil {
			return nil, err
		}
		out = append(out, BoardStatus{
			ID:             b.ID,
			Name:           b.Name,
			Emoji:          b.Emoji,
			CheckedInToday: checked,
			CurrentStreak:  b.CurrentStreak,
		})
	}
	return out, nil
}

// DashboardSummary aggregates the user's active boards.
type DashboardSummary struct {
	TotalBoards        int `json:"totalBoards"`
	TotalCheckIns      int `json:"totalCheckIns"`
	TotalCurrentStreak int `json:"totalCurrentStreak"`
	BestStreak         int `json:"bestStreak"`
}

// Dashboard returns the summary plus the five most recently updated boards.
func (s *Service) Dashboard(ctx context.Context, user *models.User) (*DashboardSummary, []models.Board, error) {
	boards, err := s.store.ListBoards(ctx, user.ID, false)
	if err != nil {
		return nil, nil, err
	}
	summary := &DashboardSummary{TotalBoards: len(boards)}
	for _, b := range boards {
		summary.TotalCheckIns += b.TotalCheckIns
		summary.TotalCurrentStreak += b.CurrentStreak
		if b.LongestStreak > summary.BestStreak {
			summary.BestStreak = b.LongestStreak
		}
	}
	top := boards
	if len(top) > 5 {
		top = top[:5]
	}
	return summary, top, nil
}

// ProfileUpdate holds partial edits to a user profile; nil means unchanged.
type ProfileUpdate struct {
	Name     *string
	Timezone *string
	Theme    *string
}

// UpdateProfile applies profile edits. Changing the timezone shifts how
// "today" is resolved for all of the user's boards from the next request on.
func (s *Service) UpdateProfile(ctx context.Context, user *models.User, u ProfileUpdate) (*models.User, error) {
	if u.Name != nil {
		user.Name = u.Name
	}
	if u.Timezone != nil {
		if _, err := time.LoadLocation(*u.Timezone); err != nil {
			return nil, ErrInvalidTimezone
		}
		user.Timezone = *u.Timezone
	}
	if u.Theme != nil {
		user.Theme = *u.Theme
	}
	user.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
