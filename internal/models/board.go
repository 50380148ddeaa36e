package models

import "time"

// Unit types a board can track.
const (
	UnitBoolean  = "boolean"
	UnitQuantity = "quantity"
	UnitDuration = "duration"
)

// Board is one trackable habit together with its denormalized statistics.
//
// CurrentStreak, LongestStreak, TotalCheckIns and LastCheckInDate are a cache
// over the board's check-in set and are only ever written by the aggregate
// recompute that runs inside the same transaction as a check-in insert or
// delete. LongestStreak never decreases, even when deletions shorten the
// historical maximum.
type Board struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Name            string     `json:"name"`
	Description     *string    `json:"description"`
	Emoji           string     `json:"emoji"`
	Color           string     `json:"color"`
	UnitType        string     `json:"unitType"`
	Unit            *string    `json:"unit"`
	TargetAmount    *float64   `json:"targetAmount"`
	CurrentStreak   int        `json:"currentStreak"`
	LongestStreak   int        `json:"longestStreak"`
	TotalCheckIns   int        `json:"totalCheckIns"`
	IsArchived      bool       `json:"isArchived"`
	ArchivedAt      *time.Time `json:"archivedAt,omitempty"`
	LastCheckInDate *string    `json:"lastCheckInDate"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
