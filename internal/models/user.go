// Package models defines the domain types for Checker.
package models

import "time"

// User is an account that owns boards and API keys.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name"`
	PasswordHash string    `json:"-"`
	Timezone     string    `json:"timezone"`
	Theme        string    `json:"theme"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Location resolves the user's IANA timezone, falling back to UTC when the
// stored name is empty or unknown. "Today" for streaks and future-date checks
// is always computed in this location.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
