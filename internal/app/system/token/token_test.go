package token

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/colabhub/colabhub/internal/domain/models"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	users map[string]*auth.SessionUser
	err   error
}

func (f *fakeFetcher) FetchSessionUser(_ context.Context, id string) (*auth.SessionUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func TestIssueAndValidate(t *testing.T) {
	iss, err := NewIssuer("test-secret", "colabhub", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	tok, err := iss.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	sub, err := iss.Validate(tok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if sub != "user-123" {
		t.Errorf("subject = %q, want user-123", sub)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	a, _ := NewIssuer("secret-a", "colabhub", time.Hour)
	b, _ := NewIssuer("secret-b", "colabhub", time.Hour)

	tok, _ := a.Issue("user-123")
	if _, err := b.Validate(tok); err == nil {
		t.Error("token signed with another secret must fail validation")
	}
}

func TestValidate_Expired(t *testing.T) {
	iss, _ := NewIssuer("test-secret", "colabhub", time.Nanosecond)
	tok, _ := iss.Issue("user-123")
	time.Sleep(time.Millisecond)
	if _, err := iss.Validate(tok); err == nil {
		t.Error("expired token must fail validation")
	}
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	if _, err := NewIssuer("", "colabhub", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestMiddleware_ValidBearer(t *testing.T) {
	iss, _ := NewIssuer("test-secret", "colabhub", time.Hour)
	fetcher := &fakeFetcher{users: map[string]*auth.SessionUser{
		"u1": {ID: "u1", Name: "Ana", Role: models.RoleStudent},
	}}

	var got *auth.SessionUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})
	mw := iss.Middleware(fetcher, zap.NewNop())(next)

	tok, _ := iss.Issue("u1")
	req := httptest.NewRequest("GET", "/api/proyectos", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	mw.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != "u1" {
		t.Errorf("principal = %+v, want u1", got)
	}
}

func TestMiddleware_NoTokenContinuesAnonymous(t *testing.T) {
	iss, _ := NewIssuer("test-secret", "colabhub", time.Hour)
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("no principal expected")
		}
	})
	mw := iss.Middleware(&fakeFetcher{}, zap.NewNop())(next)

	mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/proyectos", nil))
	if !called {
		t.Error("request without token should continue unauthenticated")
	}
}

func TestMiddleware_BadTokenRejected(t *testing.T) {
	iss, _ := NewIssuer("test-secret", "colabhub", time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a bad token")
	})
	mw := iss.Middleware(&fakeFetcher{}, zap.NewNop())(next)

	req := httptest.NewRequest("GET", "/api/proyectos", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_FetchError_MarksUnknown(t *testing.T) {
	iss, _ := NewIssuer("test-secret", "colabhub", time.Hour)
	fetcher := &fakeFetcher{err: errors.New("store down")}

	var resolveErr error
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolveErr = auth.ResolveErr(r)
	})
	mw := iss.Middleware(fetcher, zap.NewNop())(next)

	tok, _ := iss.Issue("u1")
	req := httptest.NewRequest("GET", "/api/proyectos", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	mw.ServeHTTP(httptest.NewRecorder(), req)

	if resolveErr == nil {
		t.Error("backend failure must surface as a resolve error, not anonymous")
	}
}
