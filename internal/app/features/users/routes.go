// internal/app/features/users/routes.go
package users

import (
	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdministrator))
		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeDetail)
		pr.Patch("/{id}/role", h.HandleRoleChange)
		pr.Delete("/{id}", h.HandleDelete)
	})
	return r
}
