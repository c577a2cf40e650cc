// internal/app/features/chat/routes.go
package chat

import (
	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /api/proyectos/{id}/chat; the project ID comes
// from the parent pattern.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeMessages)
		pr.Post("/", h.HandlePost)
	})
	return r
}
