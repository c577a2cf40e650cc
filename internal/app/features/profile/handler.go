// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"

	catalogstore "github.com/colabhub/colabhub/internal/app/store/catalog"
	userstore "github.com/colabhub/colabhub/internal/app/store/users"
	"github.com/colabhub/colabhub/internal/app/system/auditlog"
	"github.com/colabhub/colabhub/internal/app/system/authz"
	"github.com/colabhub/colabhub/internal/app/system/htmlsanitize"
	"github.com/colabhub/colabhub/internal/app/system/httpjson"
	"github.com/colabhub/colabhub/internal/app/system/inputval"
	"github.com/colabhub/colabhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users   *userstore.Store
	Catalog *catalogstore.Store
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(users *userstore.Store, catalog *catalogstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Catalog: catalog, Audit: audit, Log: logger}
}

// ServeProfile handles GET /api/profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "Perfil no encontrado.")
			return
		}
		h.Log.Error("profile: load user", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cargar el perfil.")
		return
	}

	httpjson.OK(w, u)
}

type updateRequest struct {
	FullName     *string  `json:"full_name" validate:"omitempty,min=2,max=120"`
	Program      *string  `json:"program" validate:"omitempty,max=120"`
	Semester     *int     `json:"semester" validate:"omitempty,gte=1,lte=12"`
	Phone        *string  `json:"phone" validate:"omitempty,max=20"`
	Bio          *string  `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL    *string  `json:"avatar_url" validate:"omitempty,url,max=500"`
	DisciplineID *string  `json:"discipline_id" validate:"omitempty,len=24"`
	SkillIDs     []string `json:"skill_ids" validate:"omitempty,dive,len=24"`
}

// HandleUpdate handles PUT /api/profile.
//
// Only the fields present in the request are written; the update is a
// merge, never a document replace, so concurrent edits to different fields
// both survive.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}

	var req updateRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	upd := userstore.ProfileUpdate{
		FullName:  req.FullName,
		Program:   req.Program,
		Semester:  req.Semester,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	}
	if req.Bio != nil {
		clean := htmlsanitize.Sanitize(*req.Bio)
		upd.Bio = &clean
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if req.DisciplineID != nil {
		oid, err := primitive.ObjectIDFromHex(*req.DisciplineID)
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "discipline_id inválido.")
			return
		}
		ok, err := h.Catalog.DisciplinesExist(ctx, []primitive.ObjectID{oid})
		if err != nil {
			h.Log.Error("profile: check discipline", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "No se pudo actualizar el perfil.")
			return
		}
		if !ok {
			httpjson.Error(w, http.StatusBadRequest, "La disciplina no existe.")
			return
		}
		upd.DisciplineID = &oid
	}

	if req.SkillIDs != nil {
		ids := make([]primitive.ObjectID, 0, len(req.SkillIDs))
		for _, s := range req.SkillIDs {
			oid, err := primitive.ObjectIDFromHex(s)
			if err != nil {
				httpjson.Error(w, http.StatusBadRequest, "skill_ids contiene un ID inválido.")
				return
			}
			ids = append(ids, oid)
		}
		ok, err := h.Catalog.SkillsExist(ctx, ids)
		if err != nil {
			h.Log.Error("profile: check skills", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "No se pudo actualizar el perfil.")
			return
		}
		if !ok {
			httpjson.Error(w, http.StatusBadRequest, "Alguna habilidad no existe.")
			return
		}
		upd.SkillIDs = ids
		upd.SetSkills = true
	}

	if err := h.Users.UpdateProfile(ctx, userID, upd); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "Perfil no encontrado.")
			return
		}
		h.Log.Error("profile: update", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo actualizar el perfil.")
		return
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.Log.Error("profile: reload after update", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo actualizar el perfil.")
		return
	}
	httpjson.OK(w, u)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// HandleChangePassword handles POST /api/profile/change_password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "No autenticado.")
		return
	}

	var req changePasswordRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.Log.Error("change password: load user", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cambiar la contraseña.")
		return
	}

	if u.PasswordHash == "" {
		httpjson.Error(w, http.StatusBadRequest, "Esta cuenta inicia sesión con Google.")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "La contraseña actual no es correcta.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("change password: hash", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cambiar la contraseña.")
		return
	}

	if err := h.Users.SetPassword(ctx, userID, string(hash)); err != nil {
		h.Log.Error("change password: store", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo cambiar la contraseña.")
		return
	}

	h.Audit.PasswordChanged(ctx, r, userID)
	httpjson.NoContent(w)
}
