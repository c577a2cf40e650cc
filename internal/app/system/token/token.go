// internal/app/system/token/token.go
//
// Bearer tokens for SPA/API clients. Sessions cover browser navigation;
// the SPA's REST calls carry one of these as "Authorization: Bearer ...".
package token

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/colabhub/colabhub/internal/app/system/auth"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Issuer signs and validates HS256 access tokens.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewIssuer creates a token issuer. The secret must be non-empty.
func NewIssuer(secret, issuer string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// Issue creates a signed access token for the given user ID.
func (i *Issuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}

// Validate parses a token string and returns the subject (user ID).
func (i *Issuer) Validate(tokenString string) (string, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("token verification failed: %w", err)
	}
	claims, ok := tok.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}

// Middleware resolves a bearer token into the request's principal when no
// session user was loaded. The same UserFetcher the session middleware uses
// resolves the subject, so role changes apply to token clients too.
//
// Absence of a token lets the request continue unauthenticated; the route
// guards decide whether that is acceptable. An invalid token is a hard 401 —
// a client that sent credentials deserves to know they were bad.
func (i *Issuer) Middleware(fetcher auth.UserFetcher, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.CurrentUser(r); ok {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			subject, err := i.Validate(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.Debug("bearer token rejected", zap.Error(err))
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			u, err := fetcher.FetchSessionUser(r.Context(), subject)
			if err != nil {
				// Backend failure: the principal is unknown, not anonymous.
				r = auth.WithResolveErr(r, err)
				next.ServeHTTP(w, r)
				return
			}
			if u == nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, auth.WithUser(r, u))
		})
	}
}
