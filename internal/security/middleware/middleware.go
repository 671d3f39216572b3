package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/biokuam/portal/internal/security/audit"
	"github.com/biokuam/portal/internal/security/auth"
	"github.com/biokuam/portal/internal/security/ratelimit"
)

type claimsContextKey struct{}

// protectedPaths lists the routes that require a valid bearer token.
var protectedPaths = map[string]bool{
	"/api/registro-finca": true,
	"/api/registro-barco": true,
	"/api/fincas":         true,
	"/api/barcos":         true,
	"/ws/eventos":         true,
}

// CORS sets permissive cross-origin headers on every response and
// short-circuits preflight requests, matching the portal's public contract.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Auth validates the bearer token on protected routes and stores the claims
// in the request context. Unprotected routes pass through untouched.
func Auth(tm *auth.TokenManager, auditLog *audit.Logger, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !protectedPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			tokenString := ""
			if header != "" {
				t, err := auth.ExtractBearer(header)
				if err != nil {
					writeUnauthorized(w, "Token inválido")
					auditLog.LogDenied(r.Context(), r.URL.Path, "malformed_header")
					return
				}
				tokenString = t
			} else if t := r.URL.Query().Get("token"); t != "" {
				// Browsers cannot set headers on websocket dials.
				tokenString = t
			}

			if tokenString == "" {
				writeUnauthorized(w, "Token requerido")
				auditLog.LogDenied(r.Context(), r.URL.Path, "missing_token")
				return
			}

			claims, err := tm.Validate(tokenString)
			if err != nil {
				log.Warn("token rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				writeUnauthorized(w, "Token inválido")
				auditLog.LogDenied(r.Context(), r.URL.Path, "invalid_token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit applies limiter to the credential-sensitive endpoints, keyed by
// client IP.
func RateLimit(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	limited := map[string]bool{
		"/api/login":    true,
		"/api/registro": true,
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limited[r.URL.Path] || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				log.Warn("rate limit exceeded",
					slog.String("path", r.URL.Path),
					slog.String("ip", ip),
				)
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"message": "Demasiadas solicitudes, intenta más tarde",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the validated claims, or nil for unauthenticated
// requests.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if c, ok := ctx.Value(claimsContextKey{}).(*auth.Claims); ok {
		return c
	}
	return nil
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
