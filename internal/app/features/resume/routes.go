// internal/app/features/resume/routes.go
package resume

import "github.com/go-chi/chi/v5"

// Routes serves the résumé at the mount point itself.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	r.Head("/", h.Serve)
	return r
}
