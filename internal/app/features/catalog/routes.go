// internal/app/features/catalog/routes.go
package catalog

import (
	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// DisciplineRoutes is mounted at /api/disciplinas.
func DisciplineRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeDisciplines)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdministrator))
		pr.Post("/", h.HandleCreateDiscipline)
	})
	return r
}

// SkillRoutes is mounted at /api/habilidades.
func SkillRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeSkills)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdministrator))
		pr.Post("/", h.HandleCreateSkill)
	})
	return r
}
