// internal/app/features/login/handler.go
package login

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
	"go.mongodb.org/mongo-driver/mongo"
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

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,institutional"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// The login failure message never says whether the email or the password
// was wrong.
const badCredentials = "Correo o contraseña incorrectos."

// HandleLogin handles POST /api/auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ClientIP(r)

	var req loginRequest
	if err := inputval.DecodeAndValidate(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.Limiter.Allow(ip) {
		h.Audit.LoginFailedRateLimit(ctx, r, req.Email)
		httpjson.Error(w, http.StatusTooManyRequests, "Demasiados intentos. Espera un momento.")
		return
	}

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.Audit.LoginFailedUserNotFound(ctx, r, req.Email)
			httpjson.Error(w, http.StatusUnauthorized, badCredentials)
			return
		}
		h.Log.Error("login: lookup user", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo iniciar sesión.")
		return
	}

	if u.PasswordHash == "" {
		// Google-provisioned account with no password set.
		h.Audit.LoginFailedWrongPassword(ctx, r, u.ID)
		httpjson.Error(w, http.StatusUnauthorized, badCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		h.Audit.LoginFailedWrongPassword(ctx, r, u.ID)
		httpjson.Error(w, http.StatusUnauthorized, badCredentials)
		return
	}

	h.Limiter.Reset(ip)

	su := &auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Role: u.Role}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("login: sign in session", zap.Error(err))
	}

	tok, err := h.Tokens.Issue(su.ID)
	if err != nil {
		h.Log.Error("login: issue token", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "No se pudo iniciar sesión.")
		return
	}

	h.Audit.LoginSuccess(ctx, r, u.ID, u.AuthMethod)

	httpjson.OK(w, authResponse{Token: tok, User: *u})
}
