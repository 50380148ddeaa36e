package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/checkerhq/checker/internal/auth"
	"github.com/checkerhq/checker/internal/boardservice"
	"github.com/checkerhq/checker/internal/models"
)

// NewRouter creates a chi router with all API routes mounted. Routes other
// than registration and login require an API key; each group additionally
// requires the scope matching its verb. sseHandler, if non-nil, is mounted
// at GET /events inside the read-scope group.
func NewRouter(svc *boardservice.Service, authSvc *auth.Service, sseHandler http.Handler, registrationOpen bool) chi.Router {
	h := NewHandler(svc, authSvc, registrationOpen)

	r := chi.NewRouter()

	// Unauthenticated.
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authSvc))

		r.Group(func(r chi.Router) {
			r.Use(RequireScope(models.ScopeRead))

			r.Get("/users/me", h.GetProfile)
			r.Get("/users/me/dashboard", h.Dashboard)
			r.Get("/api-keys", h.ListAPIKeys)

			r.Get("/boards", h.ListBoards)
			r.Get("/boards/{id}", h.GetBoard)
			r.Get("/boards/{id}/heatmap", h.Heatmap)
			r.Get("/boards/{id}/stats", h.BoardStats)
			r.Get("/boards/{boardID}/check-ins", h.ListCheckIns)
			r.Get("/check-ins/{id}", h.GetCheckIn)

			r.Get("/quick/status", h.QuickStatus)

			if sseHandler != nil {
				r.Get("/events", sseHandler.ServeHTTP)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireScope(models.ScopeWrite))

			r.Put("/users/me", h.UpdateProfile)
			r.Post("/api-keys", h.CreateAPIKey)

			r.Post("/boards", h.CreateBoard)
			r.Put("/boards/{id}", h.UpdateBoard)
			r.Post("/boards/{id}/archive", h.ArchiveBoard)
			r.Post("/boards/{id}/restore", h.RestoreBoard)
			r.Post("/boards/{id}/recompute", h.RecomputeBoard)
			r.Post("/boards/{boardID}/check-ins", h.CreateCheckIn)
			r.Put("/check-ins/{id}", h.UpdateCheckIn)

			r.Post("/quick/check-in", h.QuickCheckIn)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireScope(models.ScopeDelete))

			r.Delete("/boards/{id}", h.DeleteBoard)
			r.Delete("/check-ins/{id}", h.DeleteCheckIn)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireScope(models.ScopeAdmin))

			r.Delete("/api-keys/{id}", h.RevokeAPIKey)
		})
	})

	return r
}
