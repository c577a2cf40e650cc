// internal/app/features/comments/handler.go
package comments

import (
	"context"
	"errors"
	"net/http"

	"github.com/colabhub/colabhub/internal/app/policy/commentpolicy"
	commentstore "github.com/colabhub/colabhub/internal/app/store/comments"
	projectstore "github.com/colabhub/colabhub/internal/app/store/projects"
	userstore "github.com/colabhub/colabhub/internal/app/store/users"
	"github.com/colabhub/colabhub/internal/app/system/authz"
	"github.com/colabhub/colabhub/internal/app/system/htmlsanitize"
	"github.com/colabhub/colabhub/internal/app/system/httpjson"
	"github.com/colabhub/colabhub/internal/app/system/inputval"
	"github.com/colabhub/colabhub/internal/app/system/timeouts"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler implements the project comment wall.
type Handler struct {
	Comments *commentstore.Store
	Projects *projectstore.Store
	Users    *userstore.Store
	Log      *zap.Logger
}

func NewHandler(comments *commentstore.Store, projects *projectstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Comments: comments, Projects: projects, Users: users, Log: logger}
}

// commentView pairs a comment with the author's display fields.
type commentView struct {
	models.Comment
	AuthorName      string `json:"author_name"`
	AuthorAvatarURL string `json:"author_avatar_url,omitempty"`
}

func (h *Handler) loadProject(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "ID inválido.")
		return nil, false
	}
	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "Proyecto no encontrado.")
			return nil, false
		}
		h.Log.Error("comments: load project", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cargar el proyecto.")
		return nil, false
	}
	return p, true
}

// ServeList handles GET /api/proyectos/{id}/comentarios. Comments return in
// chronological order, oldest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}

	comments, err := h.Comments.ListForProject(ctx, p.ID)
	if err != nil {
		h.Log.Error("comments: list", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar comentarios.")
		return
	}

	authorIDs := make([]primitive.ObjectID, len(comments))
	for i, c := range comments {
		authorIDs[i] = c.AuthorID
	}
	authors, err := h.Users.GetMany(ctx, authorIDs)
	if err != nil {
		h.Log.Error("comments: load authors", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar comentarios.")
		return
	}
	byID := make(map[primitive.ObjectID]models.User, len(authors))
	for _, u := range authors {
		byID[u.ID] = u
	}

	views := make([]commentView, 0, len(comments))
	for _, c := range comments {
		v := commentView{Comment: c}
		if u, found := byID[c.AuthorID]; found {
			v.AuthorName = u.FullName
			v.AuthorAvatarURL = u.AvatarURL
		}
		views = append(views, v)
	}
	httpjson.OK(w, views)
}

type createRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// HandleCreate handles POST /api/proyectos/{id}/comentarios.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, userName, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}

	var req createRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProject(ctx, w, r)
	if !ok {
		return
	}
	if !commentpolicy.CanComment(r, p).Bool() {
		httpjson.Error(w, http.StatusForbidden, "No puedes comentar en este proyecto.")
		return
	}

	content := htmlsanitize.Sanitize(req.Content)
	if content == "" {
		httpjson.Error(w, http.StatusBadRequest, "El comentario no puede estar vacío.")
		return
	}

	c, err := h.Comments.Create(ctx, p.ID, userID, content)
	if err != nil {
		h.Log.Error("comments: create", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo publicar el comentario.")
		return
	}

	httpjson.Created(w, commentView{Comment: c, AuthorName: userName})
}

// HandleDelete handles DELETE /api/comentarios/{id}. The author, the
// project's creator and administrators may remove a comment.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "ID inválido.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, commentstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "Comentario no encontrado.")
			return
		}
		h.Log.Error("comments: load", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo eliminar el comentario.")
		return
	}

	p, err := h.Projects.GetByID(ctx, c.ProjectID)
	if err != nil && !errors.Is(err, projectstore.ErrNotFound) {
		h.Log.Error("comments: load project", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo eliminar el comentario.")
		return
	}

	if !commentpolicy.CanDelete(r, c, p).Bool() {
		httpjson.Error(w, http.StatusForbidden, "No puedes eliminar este comentario.")
		return
	}

	if err := h.Comments.Delete(ctx, id); err != nil {
		if errors.Is(err, commentstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "Comentario no encontrado.")
			return
		}
		h.Log.Error("comments: delete", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo eliminar el comentario.")
		return
	}

	httpjson.NoContent(w)
}
