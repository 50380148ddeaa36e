package models

import "time"

// Scopes an API key can carry. Admin implies every other scope.
const (
	ScopeRead   = "read"
	ScopeWrite  = "write"
	ScopeDelete = "delete"
	ScopeAdmin  = "admin"
)

// APIKey is an opaque bearer credential bound to a user and a set of scopes.
// Only the SHA-256 hash of the raw key is stored; KeyPrefix keeps the first
// characters of the raw key for lookup and display.
type APIKey struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Name       string     `json:"name"`
	KeyHash    string     `json:"-"`
	KeyPrefix  string     `json:"keyPrefix"`
	Scopes     []string   `json:"scopes"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	LastUsedAt *time.Time `json:"lastUsedAt"`
	IsRevoked  bool       `json:"isRevoked"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// HasScope reports whether the key grants the given scope.
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope || s == ScopeAdmin {
			return true
		}
	}
	return false
}

// Valid reports whether the key is neither revoked nor expired at now.
func (k *APIKey) Valid(now time.Time) bool {
	if k.IsRevoked {
		return false
	}
	if k.ExpiresAt != nil && k.ExpiresAt.Before(now) {
		return false
	}
	return true
}
