// Package auth implements API key issuance and validation. A raw key is
// shown to the user exactly once; only its SHA-256 digest and a short lookup
// prefix are stored.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/checksum"
	"github.com/checkerhq/checker/internal/models"
	"github.com/checkerhq/checker/internal/storage"
)

// Key environments baked into the raw key prefix.
const (
	EnvLive = "live"
	EnvTest = "test"
)

// prefixLen matches the key_prefix column width.
const prefixLen = 12

// 32 random bytes encode to exactly 43 base64url characters.
var keyFormat = regexp.MustCompile(`^chk_(live|test)_[A-Za-z0-9_-]{43}$`)

// Service issues and validates API keys against the store.
type Service struct {
	store storage.Store
	env   string
	now   func() time.Time
}

// NewService creates an auth service minting keys for the given environment.
func NewService(store storage.Store, env string) *Service {
	if env != EnvTest {
		env = EnvLive
	}
	return &Service{store: store, env: env, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GeneratedKey holds the parts of a freshly minted key.
type GeneratedKey struct {
	Raw    string
	Hash   string
	Prefix string
}

// GenerateKey mints a raw key of the form chk_<env>_<43 base64url chars>.
func (s *Service) GenerateKey() (GeneratedKey, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return GeneratedKey{}, fmt.Errorf("auth: random: %w", err)
	}
	raw := fmt.Sprintf("chk_%s_%s", s.env, base64.RawURLEncoding.EncodeToString(buf))
	return GeneratedKey{
		Raw:    raw,
		Hash:   checksum.SumString(raw),
		Prefix: raw[:prefixLen],
	}, nil
}

// ValidFormat reports whether raw looks like a Checker API key at all.
// Malformed input is rejected before touching the database.
func ValidFormat(raw string) bool {
	return keyFormat.MatchString(raw)
}

// CreateForUser mints a key, stores its hash, and returns the stored row
// together with the raw key. expiresInDays <= 0 means the key never expires.
func (s *Service) CreateForUser(ctx context.Context, userID, name string, scopes []string, expiresInDays int) (*models.APIKey, string, error) {
	gen, err := s.GenerateKey()
	if err != nil {
		return nil, "", err
	}
	if len(scopes) == 0 {
		scopes = []string{models.ScopeRead}
	}

	key := &models.APIKey{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		KeyHash:   gen.Hash,
		KeyPrefix: gen.Prefix,
		Scopes:    scopes,
		CreatedAt: s.now().UTC(),
	}
	if expiresInDays > 0 {
		exp := s.now().UTC().AddDate(0, 0, expiresInDays)
		key.ExpiresAt = &exp
	}

	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		return nil, "", err
	}
	return key, gen.Raw, nil
}

// Authenticate resolves a raw bearer key to its stored credential. Any
// failure mode (bad format, unknown, revoked, expired) collapses to
// ErrUnauthorized so callers cannot probe key state.
func (s *Service) Authenticate(ctx context.Context, raw string) (*models.APIKey, error) {
	if !ValidFormat(raw) {
		return nil, apperr.ErrUnauthorized
	}
	key, err := s.store.GetAPIKeyByHash(ctx, raw[:prefixLen], checksum.SumString(raw))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !key.Valid(s.now()) {
		return nil, apperr.ErrUnauthorized
	}

	// Usage stamp is best-effort; auth must not fail on it.
	_ = s.store.TouchAPIKey(ctx, key.ID, s.now().UTC())
	return key, nil
}

// Resolve authenticates a raw key and loads the owning user, yielding the
// (user, scopes) principal the rest of the system consumes.
func (s *Service) Resolve(ctx context.Context, raw string) (*models.User, *models.APIKey, error) {
	key, err := s.Authenticate(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.store.GetUser(ctx, key.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, nil, err
	}
	return user, key, nil
}

// List returns the user's keys, raw material never included.
func (s *Service) List(ctx context.Context, userID string) ([]models.APIKey, error) {
	return s.store.ListAPIKeys(ctx, userID)
}

// Revoke permanently disables a key.
func (s *Service) Revoke(ctx context.Context, userID, id string) error {
	return s.store.RevokeAPIKey(ctx, userID, id, s.now().UTC())
}
