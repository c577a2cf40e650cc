// internal/app/features/catalog/handler.go
package catalog

import (
	"context"
	"errors"
	"net/http"

	catalogstore "github.com/colabhub/colabhub/internal/app/store/catalog"
	"github.com/colabhub/colabhub/internal/app/system/httpjson"
	"github.com/colabhub/colabhub/internal/app/system/inputval"
	"github.com/colabhub/colabhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the discipline and skill catalogs. Reads are public;
// additions are administrator-only.
type Handler struct {
	Catalog *catalogstore.Store
	Log     *zap.Logger
}

func NewHandler(catalog *catalogstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Catalog: catalog, Log: logger}
}

// ServeDisciplines handles GET /api/disciplinas.
func (h *Handler) ServeDisciplines(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	disciplines, err := h.Catalog.ListDisciplines(ctx)
	if err != nil {
		h.Log.Error("catalog: list disciplines", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar disciplinas.")
		return
	}
	httpjson.OK(w, disciplines)
}

// ServeSkills handles GET /api/habilidades.
func (h *Handler) ServeSkills(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	skills, err := h.Catalog.ListSkills(ctx)
	if err != nil {
		h.Log.Error("catalog: list skills", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar habilidades.")
		return
	}
	httpjson.OK(w, skills)
}

type createRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=80"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// HandleCreateDiscipline handles POST /api/disciplinas.
func (h *Handler) HandleCreateDiscipline(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.Catalog.CreateDiscipline(ctx, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, catalogstore.ErrDuplicateName) {
			httpjson.Error(w, http.StatusConflict, "Ya existe una disciplina con ese nombre.")
			return
		}
		h.Log.Error("catalog: create discipline", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo crear la disciplina.")
		return
	}
	httpjson.Created(w, d)
}

// HandleCreateSkill handles POST /api/habilidades.
func (h *Handler) HandleCreateSkill(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	s, err := h.Catalog.CreateSkill(ctx, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, catalogstore.ErrDuplicateName) {
			httpjson.Error(w, http.StatusConflict, "Ya existe una habilidad con ese nombre.")
			return
		}
		h.Log.Error("catalog: create skill", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo crear la habilidad.")
		return
	}
	httpjson.Created(w, s)
}
