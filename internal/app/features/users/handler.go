// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/colabhub/colabhub/internal/app/store/users"
	"github.com/colabhub/colabhub/internal/app/system/auditlog"
	"github.com/colabhub/colabhub/internal/app/system/authz"
	"github.com/colabhub/colabhub/internal/app/system/httpjson"
	"github.com/colabhub/colabhub/internal/app/system/inputval"
	"github.com/colabhub/colabhub/internal/app/system/paging"
	"github.com/colabhub/colabhub/internal/app/system/timeouts"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler implements the administrator-only user management endpoints.
type Handler struct {
	Users *userstore.Store
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Audit: audit, Log: logger}
}

// ServeList handles GET /api/usuarios.
// Supports ?role=, ?search= and paging parameters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	page := paging.Parse(r)

	filter := userstore.ListFilter{Search: r.URL.Query().Get("search")}
	if roleParam := r.URL.Query().Get("role"); roleParam != "" {
		role := models.ParseRole(roleParam)
		if string(role) != roleParam {
			httpjson.Error(w, http.StatusBadRequest, "Rol desconocido.")
			return
		}
		filter.Role = role
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.List(ctx, filter, page)
	if err != nil {
		h.Log.Error("users: list", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar usuarios.")
		return
	}
	total, err := h.Users.Count(ctx, filter)
	if err != nil {
		h.Log.Error("users: count", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo listar usuarios.")
		return
	}

	httpjson.OK(w, httpjson.ListEnvelope{Count: total, Page: page.Page, Results: users})
}

// ServeDetail handles GET /api/usuarios/{id}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "ID inválido.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, "Usuario no encontrado.")
		return
	}
	httpjson.OK(w, u)
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=student instructor administrator unspecified"`
}

// HandleRoleChange handles PATCH /api/usuarios/{id}/role.
//
// The write is a targeted update of the role field; the rest of the user
// document is never touched, so a stale admin screen cannot clobber
// profile edits made since it loaded.
func (h *Handler) HandleRoleChange(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "ID inválido.")
		return
	}

	var req roleRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	newRole := models.ParseRole(req.Role)

	if targetID == actorID && newRole != models.RoleAdministrator {
		// An administrator cannot demote themselves; another admin must.
		httpjson.Error(w, http.StatusUnprocessableEntity, "No puedes cambiar tu propio rol.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	oldRole, err := h.Users.UpdateRole(ctx, targetID, newRole)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "Usuario no encontrado.")
			return
		}
		h.Log.Error("users: update role", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cambiar el rol.")
		return
	}

	h.Audit.RoleChanged(ctx, r, actorID, targetID, string(oldRole), string(newRole))
	h.Log.Info("role changed",
		zap.String("actor_id", actorID.Hex()),
		zap.String("target_id", targetID.Hex()),
		zap.String("old_role", string(oldRole)),
		zap.String("new_role", string(newRole)))

	u, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		h.Log.Error("users: reload after role change", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cambiar el rol.")
		return
	}
	httpjson.OK(w, u)
}

// HandleDelete handles DELETE /api/usuarios/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "ID inválido.")
		return
	}
	if targetID == actorID {
		httpjson.Error(w, http.StatusUnprocessableEntity, "No puedes eliminar tu propia cuenta.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Users.Delete(ctx, targetID)
	if err != nil {
		h.Log.Error("users: delete", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo eliminar la cuenta.")
		return
	}
	if n == 0 {
		httpjson.Error(w, http.StatusNotFound, "Usuario no encontrado.")
		return
	}

	h.Audit.UserDeleted(ctx, r, actorID, targetID)
	httpjson.NoContent(w)
}
