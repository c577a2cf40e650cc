package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/colabhub/colabhub/internal/domain/models"
	"go.uber.org/zap"
)

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestRequireSignedIn_Anonymous_API(t *testing.T) {
	h, called := okHandler()
	guard := RequireSignedIn(h)

	req := httptest.NewRequest("GET", "/api/proyectos", nil)
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	if *called {
		t.Error("handler should not run for anonymous request")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireSignedIn_Anonymous_HTML_RedirectsToLogin(t *testing.T) {
	h, called := okHandler()
	guard := RequireSignedIn(h)

	req := httptest.NewRequest("GET", "/proyectos/abc", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	if *called {
		t.Error("handler should not run for anonymous request")
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if loc != "/login?return=%2Fproyectos%2Fabc" {
		t.Errorf("redirect = %q, want login with return param", loc)
	}
}

func TestRequireSignedIn_ResolveError_NotTreatedAsAnonymous(t *testing.T) {
	h, called := okHandler()
	guard := RequireSignedIn(h)

	req := httptest.NewRequest("GET", "/api/proyectos", nil)
	req = WithResolveErr(req, errors.New("mongo down"))
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	if *called {
		t.Error("handler must not run while identity is unknown")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 (unknown, not 401)", rec.Code)
	}
}

func TestRequireSignedIn_Allows(t *testing.T) {
	h, called := okHandler()
	guard := RequireSignedIn(h)

	req := httptest.NewRequest("GET", "/api/proyectos", nil)
	req = WithTestUser(req, &SessionUser{ID: "u1", Role: models.RoleStudent})
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	if !*called {
		t.Error("handler should run for signed-in request")
	}
}

func TestRequireRole_WrongRole_HTML_RedirectsToLanding(t *testing.T) {
	h, called := okHandler()
	guard := RequireRole(models.RoleAdministrator)(h)

	req := httptest.NewRequest("GET", "/admin/usuarios", nil)
	req.Header.Set("Accept", "text/html")
	req = WithTestUser(req, &SessionUser{ID: "u1", Role: models.RoleStudent})
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	if *called {
		t.Error("handler should not run for wrong role")
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != DefaultLanding {
		t.Errorf("redirect = %q, want %q (not login)", loc, DefaultLanding)
	}
}

func TestRequireRole_WrongRole_API(t *testing.T) {
	h, _ := okHandler()
	guard := RequireRole(models.RoleAdministrator)(h)

	req := httptest.NewRequest("PATCH", "/api/usuarios/x/role", nil)
	req = WithTestUser(req, &SessionUser{ID: "u1", Role: models.RoleInstructor})
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRequireRole_Anonymous_GoesToLoginNotLanding(t *testing.T) {
	h, _ := okHandler()
	guard := RequireRole(models.RoleStudent)(h)

	req := httptest.NewRequest("GET", "/proyectos/x/postular", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if loc == DefaultLanding {
		t.Error("anonymous user must be sent to login, not the landing route")
	}
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	h, called := okHandler()
	guard := RequireRole(models.RoleInstructor, models.RoleAdministrator)(h)

	req := httptest.NewRequest("GET", "/x", nil)
	req = WithTestUser(req, &SessionUser{ID: "u1", Role: models.RoleAdministrator})
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	if !*called {
		t.Error("handler should run for allowed role")
	}
}

func TestSessionManager_SignInSignOut(t *testing.T) {
	mgr, err := NewSessionManager("0123456789abcdef0123456789abcdef", "colabhub-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	if err := mgr.SignIn(rec, req, &SessionUser{ID: "abc", Role: models.RoleStudent}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("SignIn should set a session cookie")
	}

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest("POST", "/logout", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}
	if err := mgr.SignOut(rec2, req2); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := NewSessionManager("", "n", "", false, zap.NewNop()); err == nil {
		t.Error("expected error for empty session key")
	}
}
