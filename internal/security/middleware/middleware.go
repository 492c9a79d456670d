package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/eshift/customer-core/internal/security/audit"
	"github.com/eshift/customer-core/internal/security/auth"
	"github.com/eshift/customer-core/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

// Sensitive endpoints get a tight per-client budget on top of the general
// limit.
const (
	strictMaxRequests = 10
	strictWindow      = time.Minute
)

// isPublic reports whether the request needs no session token. Registration
// and login are the entry points; the websocket feed authenticates itself
// via query token because browsers cannot set headers on upgrade requests.
func isPublic(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics":
		return true
	case "/api/login":
		return r.Method == http.MethodPost
	case "/api/customers":
		return r.Method == http.MethodPost
	}
	return strings.HasPrefix(r.URL.Path, "/ws/")
}

// JWTMiddleware enforces a valid token on non-public endpoints and an admin
// role on customer administration.
func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			// Customer administration is operator-only.
			if strings.HasPrefix(r.URL.Path, "/api/customers") && claims.Role != auth.RoleAdmin {
				log.Warn("non-admin attempted customer administration",
					slog.String("email", claims.Email),
					slog.String("path", r.URL.Path),
				)
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware applies the general per-session limit everywhere and a
// strict per-address limit on registration and login.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r) {
				sensitive := (r.URL.Path == "/api/customers" || r.URL.Path == "/api/login") && r.Method == http.MethodPost
				if sensitive && !limiter.AllowStrict(clientAddr(r), strictMaxRequests, strictWindow) {
					log.Warn("rate limit exceeded on sensitive endpoint",
						slog.String("path", r.URL.Path),
						slog.String("client", clientAddr(r)),
					)
					http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			clientID := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				clientID = claims.Email
			}

			if !limiter.Allow(clientID) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records registration and deletion attempts before they are
// handled.
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := clientAddr(r)
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				actor = claims.Email
			}

			if r.Method == http.MethodPost && r.URL.Path == "/api/customers" {
				auditLog.LogRegistration(r.Context(), actor, "initiated", "")
			}
			if r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/customers/") {
				// Runs ahead of mux routing, so the ID comes off the path.
				id := strings.TrimPrefix(r.URL.Path, "/api/customers/")
				auditLog.LogDeletion(r.Context(), actor, id, "initiated", "")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
