// internal/app/features/profile/routes.go
package profile

import (
	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeProfile)
		pr.Put("/", h.HandleUpdate)
		pr.Post("/change_password", h.HandleChangePassword)
	})
	return r
}
