package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthConfig holds the control plane's JWT bearer-token configuration.
// Unlike a multi-tenant API, this engine exposes exactly two read-only
// routes (/metrics, /status) behind a single scope — there is no
// admin-vs-member distinction to enforce here.
type AuthConfig struct {
	Enabled       bool
	JWTSecret     string
	PublicPaths   []string // paths served without a token, e.g. "/metrics" for scrapers
	RequiredScope string   // scope every other path requires; empty means "any valid token"
}

// Claims is the JWT payload an orchestrator presents to reach the control
// plane. Subject identifies the orchestrator process (not an end user —
// this engine has no user-facing surface), and Scopes lists the
// capabilities it was issued, e.g. "status:read".
type Claims struct {
	Subject string   `json:"sub"`
	Scopes  []string `json:"scopes"`
	jwt.RegisteredClaims
}

type contextKey string

const claimsContextKey contextKey = "neighbors-engine-claims"

// AuthMiddleware validates a Bearer JWT against config.JWTSecret and, for
// non-public paths, checks it carries config.RequiredScope.
func AuthMiddleware(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			for _, path := range config.PublicPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeAuthError(w, "missing or malformed bearer token", http.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(config.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				writeAuthError(w, fmt.Sprintf("invalid token: %v", err), http.StatusUnauthorized)
				return
			}

			if config.RequiredScope != "" && !hasScope(claims.Scopes, config.RequiredScope) {
				writeAuthError(w, fmt.Sprintf("token lacks required scope %q", config.RequiredScope), http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the validated Claims a handler was called
// with, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimPrefix(header, prefix)
	return token, token != ""
}

func hasScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want {
			return true
		}
	}
	return false
}

// IssueToken signs a token for subject carrying scopes. The engine never
// calls this itself — it only validates tokens — but exposes it so the
// orchestrator that talks to this engine's control plane can mint one.
func IssueToken(subject string, scopes []string, secret string) (string, error) {
	claims := &Claims{
		Subject: subject,
		Scopes:  scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "neighbors-engine",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func writeAuthError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q,"status":%d}`, message, status)
}
