package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/auth"
	"github.com/checkerhq/checker/internal/models"
)

// Principal is the resolved identity attached to authenticated requests.
type Principal struct {
	User *models.User
	Key  *models.APIKey
}

type principalCtxKey struct{}

// PrincipalFrom extracts the authenticated principal from the context.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*Principal)
	return p, ok
}

// extractKey pulls the raw API key from X-API-Key or a Bearer header.
func extractKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// AuthMiddleware resolves the API key on every request and attaches the
// (user, key) principal. Requests without a usable credential never reach
// the handlers.
func AuthMiddleware(authSvc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractKey(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "MISSING_API_KEY",
					"API key required. Provide via Authorization: Bearer <key> or X-API-Key header.")
				return
			}

			user, key, err := authSvc.Resolve(r.Context(), raw)
			if errors.Is(err, apperr.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, "INVALID_API_KEY", "Invalid, revoked or expired API key.")
				return
			}
			if err != nil {
				respondErr(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalCtxKey{}, &Principal{User: user, Key: key})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope gates a route group on one scope; admin keys pass everything.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "MISSING_API_KEY", "Authentication required.")
				return
			}
			if !p.Key.HasScope(scope) {
				writeError(w, http.StatusForbidden, "INSUFFICIENT_SCOPE",
					"This action requires scope: "+scope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
