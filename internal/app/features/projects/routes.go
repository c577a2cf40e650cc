// internal/app/features/projects/routes.go
package projects

import (
	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes builds the /api/proyectos router. The comment and chat routers
// mount under the project so their handlers see the {id} URL parameter.
func Routes(h *Handler, comments, chat chi.Router) chi.Router {
	r := chi.NewRouter()

	// Reads are public; the detail response carries per-caller permissions.
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeDetail)
	r.Get("/{id}/colaboradores", h.ServeCollaborators)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/mis_proyectos", h.ServeMine)
		pr.Get("/colaborando", h.ServeCollaborating)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Get("/{id}/solicitudes", h.ServeRequests)
		pr.Post("/{id}/solicitar_colaboracion", h.HandleApply)
		pr.Post("/{id}/imagen", h.HandleImageUpload)
	})

	r.Mount("/{id}/comentarios", comments)
	r.Mount("/{id}/chat", chat)

	return r
}
