// internal/app/features/adminusers/routes.go
package adminusers

import (
	"github.com/go-chi/chi/v5"
	"github.com/tripdesk/tripdesk/internal/app/system/auth"
)

// Routes mounts the admin user-management API under the path where
// this router is mounted (typically "/api/admin/users" from bootstrap).
//
// Only sign-in is enforced by middleware; role checks live in the
// policy evaluator so every denial carries its reason.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Patch("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
