// internal/app/features/chat/handler.go
package chat

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/colabhub/colabhub/internal/app/policy/projectpolicy"
	chatstore "github.com/colabhub/colabhub/internal/app/store/chat"
	collabstore "github.com/colabhub/colabhub/internal/app/store/collaborations"
	projectstore "github.com/colabhub/colabhub/internal/app/store/projects"
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

// defaultLimit caps a single chat page; clients poll with ?after= to page
// forward.
const defaultLimit = 100

// Handler implements the members-only project chat. Access is limited to
// the project's creator and accepted collaborators.
type Handler struct {
	Chat     *chatstore.Store
	Projects *projectstore.Store
	Collabs  *collabstore.Store
	Log      *zap.Logger
}

func NewHandler(chat *chatstore.Store, projects *projectstore.Store, collabs *collabstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Chat: chat, Projects: projects, Collabs: collabs, Log: logger}
}

// authorize loads the project and checks chat membership. Writes the error
// response itself on failure.
func (h *Handler) authorize(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
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
		h.Log.Error("chat: load project", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cargar el chat.")
		return nil, false
	}

	var isMember bool
	if _, _, userID, ok := authz.UserCtx(r); ok {
		isMember, err = h.Collabs.IsAcceptedCollaborator(ctx, p.ID, userID)
		if err != nil {
			h.Log.Error("chat: membership check", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "No se pudo cargar el chat.")
			return nil, false
		}
	}

	if !projectpolicy.CanViewChat(r, p, isMember).Bool() {
		httpjson.Error(w, http.StatusForbidden, "El chat es solo para miembros del proyecto.")
		return nil, false
	}
	return p, true
}

// ServeMessages handles GET /api/proyectos/{id}/chat.
// ?after= takes a Unix millisecond timestamp; only messages newer than it
// return, so clients poll incrementally instead of refetching the backlog.
func (h *Handler) ServeMessages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.authorize(ctx, w, r)
	if !ok {
		return
	}

	var after time.Time
	if raw := r.URL.Query().Get("after"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms < 0 {
			httpjson.Error(w, http.StatusBadRequest, "after debe ser un timestamp en milisegundos.")
			return
		}
		after = time.UnixMilli(ms).UTC()
	}

	messages, err := h.Chat.ListForProject(ctx, p.ID, after, defaultLimit)
	if err != nil {
		h.Log.Error("chat: list", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cargar el chat.")
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	httpjson.OK(w, messages)
}

type postRequest struct {
	Body string `json:"body" validate:"required,min=1,max=1000"`
}

// HandlePost handles POST /api/proyectos/{id}/chat.
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	_, userName, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}

	var req postRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.authorize(ctx, w, r)
	if !ok {
		return
	}

	body := htmlsanitize.Sanitize(req.Body)
	if body == "" {
		httpjson.Error(w, http.StatusBadRequest, "El mensaje no puede estar vacío.")
		return
	}

	msg, err := h.Chat.Append(ctx, p.ID, userID, userName, body)
	if err != nil {
		h.Log.Error("chat: append", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo enviar el mensaje.")
		return
	}
	httpjson.Created(w, msg)
}
