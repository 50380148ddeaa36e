package api

import (
	"errors"
	"net/http"

	"github.com/checkerhq/checker/internal/apperr"
	"github.com/checkerhq/checker/internal/models"
)

func apiKeyView(k *models.APIKey) map[string]any {
	return map[string]any{
		"id":        k.ID,
		"name":      k.Name,
		"keyPrefix": k.KeyPrefix,
		"scopes":    k.Scopes,
		"expiresAt": k.ExpiresAt,
		"createdAt": k.CreatedAt,
	}
}

// Register handles POST /v1/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.registration {
		writeError(w, http.StatusForbidden, "REGISTRATION_DISABLED", "Registration is disabled on this server.")
		return
	}

	var req RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	user, key, rawKey, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name, req.Timezone)
	if errors.Is(err, apperr.ErrAlreadyExists) {
		writeError(w, http.StatusConflict, "USER_EXISTS", "A user with this email already exists.")
		return
	}
	if err != nil {
		respondErr(w, err)
		return
	}

	keyView := apiKeyView(key)
	keyView["key"] = rawKey

	writeJSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"user":   user,
			"apiKey": keyView,
		},
		"meta": map[string]string{
			"message": "Account created. Store your API key securely - it won't be shown again.",
		},
	})
}

// Login handles POST /v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}

	user, keys, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, apperr.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password.")
		return
	}
	if err != nil {
		respondErr(w, err)
		return
	}

	keyViews := make([]map[string]any, 0, len(keys))
	for i := range keys {
		keyViews = append(keyViews, apiKeyView(&keys[i]))
	}
	writeData(w, http.StatusOK, map[string]any{
		"user":    user,
		"apiKeys": keyViews,
	})
}
