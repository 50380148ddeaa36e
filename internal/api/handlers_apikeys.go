package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListAPIKeys handles GET /v1/api-keys.
func (h *Handler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.auth.List(r.Context(), principal(r).User.ID)
	if err != nil {
		respondErr(w, err)
		return
	}
	views := make([]map[string]any, 0, len(keys))
	for i := range keys {
		v := apiKeyView(&keys[i])
		v["lastUsedAt"] = keys[i].LastUsedAt
		v["isRevoked"] = keys[i].IsRevoked
		views = append(views, v)
	}
	writeData(w, http.StatusOK, views)
}

// CreateAPIKey handles POST /v1/api-keys.
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest
	if !decode(w, r, &req) {
		return
	}

	key, rawKey, err := h.auth.CreateForUser(r.Context(), principal(r).User.ID, req.Name, req.Scopes, req.ExpiresInDays)
	if err != nil {
		respondErr(w, err)
		return
	}

	view := apiKeyView(key)
	view["key"] = rawKey
	writeData(w, http.StatusCreated, view)
}

// RevokeAPIKey handles DELETE /v1/api-keys/{id}.
func (h *Handler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Revoke(r.Context(), principal(r).User.ID, chi.URLParam(r, "id")); err != nil {
		respondErr(w, err)
		return
	}
	writeMeta(w, http.StatusOK, "API key revoked.")
}
