package models

import "time"

// CheckIn is one dated record of habit completion.
//
// Date is a calendar date ("2006-01-02") in the owner's timezone at creation
// time; Timestamp is the full-precision instant. SessionNumber is the 1-based
// ordinal among check-ins sharing the same board and date, assigned by
// counting existing same-day rows inside the insert transaction. Gaps left by
// deletions are never renumbered.
type CheckIn struct {
	ID            string    `json:"id"`
	BoardID       string    `json:"boardId"`
	UserID        string    `json:"userId"`
	Date          string    `json:"date"`
	Timestamp     time.Time `json:"timestamp"`
	Amount        *float64  `json:"amount"`
	Note          *string   `json:"note"`
	SessionNumber int       `json:"sessionNumber"`
	CreatedAt     time.Time `json:"createdAt"`
}
