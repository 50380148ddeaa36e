package api

import (
	"net/http"

	"github.com/checkerhq/checker/internal/boardservice"
)

// GetProfile handles GET /v1/users/me.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, principal(r).User)
}

// UpdateProfile handles PUT /v1/users/me.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), principal(r).User, boardservice.ProfileUpdate{
		Name:     req.Name,
		Timezone: req.Timezone,
		Theme:    req.Theme,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

// Dashboard handles GET /v1/users/me/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, boards, err := h.svc.Dashboard(r.Context(), principal(r).User)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"summary": summary,
		"boards":  boards,
	})
}
