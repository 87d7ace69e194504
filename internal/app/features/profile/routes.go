package profile

import (
	"github.com/go-chi/chi/v5"
	"github.com/tripdesk/tripdesk/internal/app/system/auth"
)

// Routes mounts the self-service profile endpoints.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeProfile)
		pr.Patch("/", h.HandleUpdate)
	})

	return r
}
