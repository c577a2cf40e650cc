// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/colabhub/colabhub/internal/app/store/users"
	"github.com/colabhub/colabhub/internal/app/system/auditlog"
	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/colabhub/colabhub/internal/app/system/httpjson"
	"github.com/colabhub/colabhub/internal/app/system/inputval"
	"github.com/colabhub/colabhub/internal/app/system/ratelimit"
	"github.com/colabhub/colabhub/internal/app/system/timeouts"
	"github.com/colabhub/colabhub/internal/app/system/token"
	"github.com/colabhub/colabhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Tokens     *token.Issuer
	Limiter    *ratelimit.Limiter
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sm *auth.SessionManager, tokens *token.Issuer, limiter *ratelimit.Limiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sm,
		Tokens:     tokens,
		Limiter:    limiter,
		Audit:      audit,
		Log:        logger,
	}
}

type registerRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email,institutional"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=student instructor"`
	Program  string `json:"program" validate:"omitempty,max=120"`
	Semester int    `json:"semester" validate:"omitempty,gte=1,lte=12"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// HandleRegister handles POST /api/auth/register.
//
// The institutional-domain check happens during decode, before any store
// call, so a wrong-domain email never reaches the database or produces a
// half-created account.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ClientIP(r)
	if !h.Limiter.Allow(ip) {
		httpjson.Error(w, http.StatusTooManyRequests, "Demasiados intentos. Espera un momento.")
		return
	}

	var req registerRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	role := models.RoleStudent
	if req.Role != "" {
		role = models.ParseRole(req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("register: hash password", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo crear la cuenta.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		AuthMethod:   "password",
		Role:         role,
		Program:      req.Program,
		Semester:     req.Semester,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Error(w, http.StatusConflict, "Ya existe una cuenta con este correo.")
			return
		}
		h.Log.Error("register: create user", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo crear la cuenta.")
		return
	}

	su := &auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Role: u.Role}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("register: sign in session", zap.Error(err))
	}

	tok, err := h.Tokens.Issue(su.ID)
	if err != nil {
		h.Log.Error("register: issue token", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo crear la cuenta.")
		return
	}

	h.Audit.Registered(ctx, r, u.ID, "password", string(u.Role))
	h.Log.Info("user registered",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", string(u.Role)))

	httpjson.Created(w, authResponse{Token: tok, User: u})
}
