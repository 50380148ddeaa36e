package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/checkerhq/checker/internal/boardservice"
	"github.com/checkerhq/checker/internal/storage"
)

// ListCheckIns handles GET /v1/boards/{boardID}/check-ins.
func (h *Handler) ListCheckIns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.CheckInFilter{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}
	if l := q.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid limit.")
			return
		}
		filter.Limit = limit
	}

	checkIns, err := h.svc.ListCheckIns(r.Context(), principal(r).User, chi.URLParam(r, "boardID"), filter)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusOK, checkIns)
}

// CreateCheckIn handles POST /v1/boards/{boardID}/check-ins.
func (h *Handler) CreateCheckIn(w http.ResponseWriter, r *http.Request) {
	var req CreateCheckInRequest
	if !decode(w, r, &req) {
		return
	}

	checkIn, board, err := h.svc.RecordCheckIn(r.Context(), principal(r).User, chi.URLParam(r, "boardID"), boardservice.CheckInParams{
		Date:   req.Date,
		Amount: req.Amount,
		Note:   req.Note,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{
		"checkIn": checkIn,
		"board":   board,
	})
}

// GetCheckIn handles GET /v1/check-ins/{id}.
func (h *Handler) GetCheckIn(w http.ResponseWriter, r *http.Request) {
	checkIn, err := h.svc.GetCheckIn(r.Context(), principal(r).User, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusOK, checkIn)
}

// UpdateCheckIn handles PUT /v1/check-ins/{id}.
func (h *Handler) UpdateCheckIn(w http.ResponseWriter, r *http.Request) {
	var req UpdateCheckInRequest
	if !decode(w, r, &req) {
		return
	}

	checkIn, err := h.svc.UpdateCheckIn(r.Context(), principal(r).User, chi.URLParam(r, "id"), boardservice.CheckInEdit{
		Amount: req.Amount,
		Note:   req.Note,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusOK, checkIn)
}

// DeleteCheckIn handles DELETE /v1/check-ins/{id}.
func (h *Handler) DeleteCheckIn(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCheckIn(r.Context(), principal(r).User, chi.URLParam(r, "id")); err != nil {
		respondErr(w, err)
		return
	}
	writeMeta(w, http.StatusOK, "Check-in deleted.")
}

// QuickCheckIn handles POST /v1/quick/check-in.
func (h *Handler) QuickCheckIn(w http.ResponseWriter, r *http.Request) {
	var req QuickCheckInRequest
	if !decode(w, r, &req) {
		return
	}

	checkIn, board, err := h.svc.QuickCheckIn(r.Context(), principal(r).User, req.BoardID, req.BoardName, req.Amount, req.Note)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{
		"checkIn": checkIn,
		"board":   board,
	})
}
