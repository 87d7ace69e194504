package login

import "github.com/go-chi/chi/v5"

// Routes mounts the credentials sign-in endpoint.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeLogin)
	return r
}
