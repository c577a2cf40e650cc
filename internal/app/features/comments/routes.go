// internal/app/features/comments/routes.go
package comments

import (
	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// ProjectRoutes is mounted under /api/proyectos/{id}/comentarios; the
// project ID comes from the parent pattern.
func ProjectRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
	})
	return r
}

// Routes is mounted at /api/comentarios for operations addressed by
// comment ID.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Delete("/{id}", h.HandleDelete)
	})
	return r
}
