// internal/app/features/golinks/routes.go
package golinks

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{key}", h.Redirect)
	return r
}
