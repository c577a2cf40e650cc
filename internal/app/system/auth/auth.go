// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/colabhub/colabhub/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
)

// DefaultLanding is where a signed-in user lands when a role guard turns
// them away (rule 2 of the guard precedence). Mirrors the SPA's wildcard
// route: everything falls back to the project listing.
const DefaultLanding = "/proyectos"

// SessionUser is the resolved principal injected into r.Context().
// It is re-fetched from the users collection on every request (not cached
// in the cookie beyond the user ID), so role changes and disabled accounts
// take effect immediately.
type SessionUser struct {
	ID    string
	Name  string
	Email string
	Role  models.Role
}

// UserFetcher loads the fresh SessionUser for a stored user ID.
// Return (nil, nil) when the user no longer exists or is disabled — that is
// "definitely anonymous". Return an error only for backend failures, which
// callers must treat as "unknown", never as anonymous.
type UserFetcher interface {
	FetchSessionUser(ctx context.Context, userID string) (*SessionUser, error)
}

type ctxKey string

const (
	currentUserKey ctxKey = "currentUser"
	resolveErrKey  ctxKey = "identityResolveErr"
)

// SessionManager owns the cookie store and the identity-resolution
// middleware. Constructed once in bootstrap and passed to features.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher UserFetcher
}

// NewSessionManager builds a cookie-backed session manager.
// In production (secure=true) cookies are Secure + SameSite=None so the SPA
// can send them cross-site over HTTPS; in dev Lax keeps localhost working.
func NewSessionManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide >=32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher wires the store used to resolve session user IDs into
// fresh principals on each request.
func (m *SessionManager) SetUserFetcher(f UserFetcher) { m.fetcher = f }

// CurrentUser returns the resolved principal and a found flag.
// ok=false means no principal was resolved for this request; check
// ResolveErr to tell "anonymous" apart from "resolution failed".
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// ResolveErr returns the identity-resolution failure for this request, if
// any. A non-nil error means the principal is UNKNOWN, not anonymous, and
// guards must not redirect to login based on it.
func ResolveErr(r *http.Request) error {
	err, _ := r.Context().Value(resolveErrKey).(error)
	return err
}

// LoadSessionUser resolves the current principal from the session cookie.
// It never blocks the request: a backend failure is recorded in context and
// surfaced by the guards instead of being coerced to "anonymous".
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.store.Get(r, m.name)

		isAuth, _ := sess.Values[isAuthKey].(bool)
		id, _ := sess.Values[userIDKey].(string)
		if !isAuth || id == "" {
			next.ServeHTTP(w, r)
			return
		}

		if m.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}

		u, err := m.fetcher.FetchSessionUser(r.Context(), id)
		switch {
		case err != nil:
			m.log.Error("identity resolution failed", zap.Error(err))
			r = r.WithContext(context.WithValue(r.Context(), resolveErrKey, err))
		case u != nil:
			r = withUser(r, u)
		}
		// u == nil, err == nil: session points at a deleted/disabled user;
		// treat as anonymous.
		next.ServeHTTP(w, r)
	})
}

// SignIn records the principal in the session cookie.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// RequireSignedIn gates a route on having a resolved principal.
//
// Precedence:
//  1. resolution failed  -> 503 (unknown, not anonymous; client retries)
//  2. no principal       -> login redirect (HTML) / 401 (API)
//  3. otherwise          -> allow
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := ResolveErr(r); err != nil {
			http.Error(w, "identity temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		denyUnauthenticated(w, r)
	})
}

// RequireRole gates a route on having a principal with one of the allowed
// roles. A signed-in user with the wrong role is sent to the default
// landing route (HTML) or given 403 (API) — never to login.
func RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	set := make(map[models.Role]struct{}, len(allowed))
	for _, role := range allowed {
		set[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ResolveErr(r); err != nil {
				http.Error(w, "identity temporarily unavailable", http.StatusServiceUnavailable)
				return
			}

			u, ok := CurrentUser(r)
			if !ok {
				denyUnauthenticated(w, r)
				return
			}

			if _, has := set[u.Role]; !has {
				if wantsHTML(r) {
					http.Redirect(w, r, DefaultLanding, http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithUser injects a resolved principal into the request context. Used by
// the bearer-token middleware and by tests.
func WithUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// WithTestUser injects a principal directly into the request context.
// Test helper only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// WithResolveErr marks the request as having failed identity resolution.
// Test helper only.
func WithResolveErr(r *http.Request, err error) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), resolveErrKey, err))
}

func denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		ret := url.QueryEscape(currentURI(r))
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
