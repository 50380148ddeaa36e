package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/models"
)

// Register creates a user account with a bcrypt-hashed password and mints
// its default read/write API key. The raw key is returned exactly once.
func (s *Service) Register(ctx context.Context, email, password, name, timezone string) (*models.User, *models.APIKey, string, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, "", err
	}
	if timezone == "" {
		timezone = "UTC"
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Timezone:     timezone,
		Theme:        "system",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if name != "" {
		user.Name = &name
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, nil, "", err
	}

	key, raw, err := s.CreateForUser(ctx, user.ID, "Default Key",
		[]string{models.ScopeRead, models.ScopeWrite}, 0)
	if err != nil {
		return nil, nil, "", err
	}
	return user, key, raw, nil
}

// Login verifies credentials and returns the account with its key metadata.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, []models.APIKey, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, nil, err
	}
	if user.PasswordHash == "" || !CheckPassword(user.PasswordHash, password) {
		return nil, nil, apperr.ErrUnauthorized
	}

	keys, err := s.store.ListAPIKeys(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, keys, nil
}
