package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/checkerhq/checker/internal/boardservice"
)

// ListBoards handles GET /v1/boards.
func (h *Handler) ListBoards(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("includeArchived") == "true"
	boards, err := h.svc.ListBoards(r.Context(), principal(r).User, includeArchived)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusOK, boards)
}

// CreateBoard handles POST /v1/boards.
func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var req CreateBoardRequest
	if !decode(w, r, &req) {
		return
	}

	board, err := h.svc.CreateBoard(r.Context(), principal(r).User, boardservice.BoardParams{
		Name:         req.Name,
		Description:  req.Description,
		Emoji:        req.Emoji,
		Color:        req.Color,
		UnitType:     req.UnitType,
		Unit:         req.Unit,
		TargetAmount: req.TargetAmount,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, board)
}

// GetBoard handles GET /v1/boards/{id}.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.GetBoard(r.Context(), principal(r).User, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusOK, board)
}

// UpdateBoard handles PUT /v1/boards/{id}.
func (h *Handler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	var req UpdateBoardRequest
	if !decode(w, r, &req) {
		return
	}

	board, err := h.svc.UpdateBoard(r.Context(), principal(r).User, chi.URLParam(r, "id"), boardservice.BoardUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Emoji:        req.Emoji,
		Color:        req.Color,
		UnitType:     req.UnitType,
		Unit:         req.Unit,
		TargetAmount: req.TargetAmount,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusOK, board)
}

// DeleteBoard handles DELETE /v1/boards/{id}.
func (h *Handler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteBoard(r.Context(), principal(r).User, chi.URLParam(r, "id")); err != nil {
		respondErr(w, err)
		return
	}
	writeMeta(w, http.StatusOK, "Board deleted.")
}

// ArchiveBoard handles POST /v1/boards/{id}/archive.
func (h *Handler) ArchiveBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.ArchiveBoard(r.Context(), principal(r).User, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusOK, board)
}

// RestoreBoard handles POST /v1/boards/{id}/restore.
func (h *Handler) RestoreBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.RestoreBoard(r.Context(), principal(r).User, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusOK, board)
}

// RecomputeBoard handles POST /v1/boards/{id}/recompute. It re-derives the
// board's statistics from its check-in set, for repair after manual fixes.
func (h *Handler) RecomputeBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.Recompute(r.Context(), principal(r).User, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusOK, board)
}

// Heatmap handles GET /v1/boards/{id}/heatmap. Accepts either ?year=YYYY
// (default: the current year in the owner's timezone) or an explicit
// ?startDate=&endDate= range.
func (h *Handler) Heatmap(w http.ResponseWriter, r *http.Request) {
	user := principal(r).User
	q := r.URL.Query()

	startDate := q.Get("startDate")
	endDate := q.Get("endDate")
	var year int
	if startDate == "" || endDate == "" {
		year = h.svc.CurrentYear(user)
		if y := q.Get("year"); y != "" {
			parsed, err := strconv.Atoi(y)
			if err != nil {
				writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid year.")
				return
			}
			year = parsed
		}
		startDate = fmt.Sprintf("%04d-01-01", year)
		endDate = fmt.Sprintf("%04d-12-31", year)
	}

	board, days, err := h.svc.Heatmap(r.Context(), user, chi.URLParam(r, "id"), startDate, endDate)
	if err != nil {
		respondErr(w, err)
		return
	}
	payload := map[string]any{
		"targetAmount": board.TargetAmount,
		"days":         days,
	}
	if year != 0 {
		payload["year"] = year
	}
	writeData(w, http.StatusOK, payload)
}

// BoardStats handles GET /v1/boards/{id}/stats.
func (h *Handler) BoardStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context(), principal(r).User, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusOK, st)
}

// QuickStatus handles GET /v1/quick/status.
func (h *Handler) QuickStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.svc.QuickStatus(r.Context(), principal(r).User)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeData(w, http.StatusOK, statuses)
}
