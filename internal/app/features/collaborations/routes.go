// internal/app/features/collaborations/routes.go
package collaborations

import (
	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/mis_solicitudes", h.ServeMine)
		pr.Post("/{id}/aceptar", h.HandleAccept)
		pr.Post("/{id}/rechazar", h.HandleReject)
		pr.Post("/{id}/cancelar", h.HandleCancel)
	})
	return r
}
