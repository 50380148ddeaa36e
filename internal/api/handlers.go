package api

import (
	"net/http"

	"github.com/checkerhq/checker/internal/auth"
	"github.com/checkerhq/checker/internal/boardservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc          *boardservice.Service
	auth         *auth.Service
	registration bool
}

// NewHandler creates a new Handler.
func NewHandler(svc *boardservice.Service, authSvc *auth.Service, registrationOpen bool) *Handler {
	return &Handler{svc: svc, auth: authSvc, registration: registrationOpen}
}

// principal returns the authenticated principal. The auth middleware
// guarantees it is present on protected routes.
func principal(r *http.Request) *Principal {
	p, _ := PrincipalFrom(r.Context())
	return p
}
