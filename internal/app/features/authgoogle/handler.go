// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	userstore "github.com/colabhub/colabhub/internal/app/store/users"
	"github.com/colabhub/colabhub/internal/app/system/auditlog"
	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/colabhub/colabhub/internal/app/system/inputval"
	"github.com/colabhub/colabhub/internal/app/system/timeouts"
	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateCookieName = "colabhub_oauth_state"

// Handler handles Google OAuth authentication.
//
// Only institutional accounts may sign in: the email Google reports is
// checked against the institutional domain before any user is looked up or
// provisioned.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
	Log        *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string

	// stateCodec signs the short-lived state cookie that ties the callback
	// to the browser that started the flow.
	stateCodec *securecookie.SecureCookie
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(users *userstore.Store, sm *auth.SessionManager, audit *auditlog.Logger, clientID, clientSecret, baseURL, stateKey string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:        users,
		SessionMgr:   sm,
		Audit:        audit,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/api/auth/google/callback",
		stateCodec:   securecookie.New([]byte(stateKey), nil),
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /api/auth/google: redirects to Google's consent
// screen with a signed state cookie.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("google oauth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("generate oauth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	encoded, err := h.stateCodec.Encode(stateCookieName, state)
	if err != nil {
		h.Log.Error("encode oauth state cookie", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /api/auth/google/callback.
//
// An unknown institutional email is provisioned as a student account on the
// spot; a known email signs into the existing account regardless of how it
// was originally created.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("google oauth denied", zap.String("error", errParam))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	if !h.validState(r) {
		h.Log.Warn("invalid or expired oauth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}
	// One-shot cookie.
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	tok, err := h.oauth2Config().Exchange(r.Context(), code)
	if err != nil {
		h.Log.Error("oauth code exchange failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	gu, err := fetchGoogleUserInfo(r.Context(), tok)
	if err != nil {
		h.Log.Error("fetch google user info", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	if err := inputval.CheckInstitutionalEmail(gu.Email); err != nil {
		h.Log.Info("google sign-in with non-institutional email",
			zap.String("email", gu.Email))
		http.Redirect(w, r, "/login?error=dominio_invalido", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, created, err := h.findOrProvision(ctx, gu)
	if err != nil {
		h.Log.Error("google sign-in lookup failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	su := &auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Role: u.Role}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("google sign-in session", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	if created {
		h.Audit.GoogleLinked(ctx, r, u.ID)
		h.Audit.Registered(ctx, r, u.ID, "google", string(u.Role))
	} else {
		h.Audit.LoginSuccess(ctx, r, u.ID, "google")
	}

	http.Redirect(w, r, auth.DefaultLanding, http.StatusSeeOther)
}

func (h *Handler) validState(r *http.Request) bool {
	state := r.URL.Query().Get("state")
	if state == "" {
		return false
	}
	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return false
	}
	var stored string
	if err := h.stateCodec.Decode(stateCookieName, cookie.Value, &stored); err != nil {
		return false
	}
	return stored == state
}

func (h *Handler) findOrProvision(ctx context.Context, gu *googleUserInfo) (*models.User, bool, error) {
	u, err := h.Users.GetByEmail(ctx, gu.Email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, err
	}

	created, err := h.Users.Create(ctx, models.User{
		FullName:   gu.Name,
		Email:      gu.Email,
		AuthMethod: "google",
		Role:       models.RoleStudent,
		AvatarURL:  gu.Picture,
	})
	if err != nil {
		// Lost a race with a concurrent first sign-in; the account exists now.
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			u, getErr := h.Users.GetByEmail(ctx, gu.Email)
			return u, false, getErr
		}
		return nil, false, err
	}
	return &created, true, nil
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
