package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/biokuam/portal/internal/domain"
	"github.com/biokuam/portal/internal/security/audit"
	"github.com/biokuam/portal/internal/security/auth"
	"github.com/biokuam/portal/internal/security/ratelimit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authChain(tm *auth.TokenManager) http.Handler {
	log := testLogger()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims != nil {
			w.Header().Set("X-User-ID", claims.UserID())
		}
		w.WriteHeader(http.StatusOK)
	})
	return Auth(tm, audit.NewLogger(log), log)(next)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "biokuam", time.Hour)
	h := authChain(tm)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/fincas", nil))

	if rec.Code != 401 {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Token requerido") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "biokuam", time.Hour)
	h := authChain(tm)

	req := httptest.NewRequest("GET", "/api/barcos", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != 401 {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Token inválido") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestAuthAcceptsValidToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "biokuam", time.Hour)
	token, err := tm.Generate(&domain.User{ID: "BKM1", Correo: "ana@example.com"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	h := authChain(tm)

	req := httptest.NewRequest("GET", "/api/fincas", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-User-ID"); got != "BKM1" {
		t.Fatalf("claims not propagated, got user id %q", got)
	}
}

func TestAuthAcceptsQueryToken(t *testing.T) {
	// Browsers cannot set headers when dialing a websocket.
	tm := auth.NewTokenManager("test-secret", "biokuam", time.Hour)
	token, err := tm.Generate(&domain.User{ID: "BKM1"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	h := authChain(tm)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/ws/eventos?token="+token, nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthSkipsPublicPaths(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "biokuam", time.Hour)
	h := authChain(tm)

	for _, path := range []string{"/api/login", "/api/registro", "/api/usuarios", "/api/clima", "/", "/index.html"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != 200 {
			t.Errorf("%s: expected pass-through, got %d", path, rec.Code)
		}
	}
}

func TestCORSHeadersAndPreflight(t *testing.T) {
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/usuarios", nil))
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("next handler not invoked")
	}

	// Preflight never reaches the next handler.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/api/registro", nil))
	if rec.Code != 200 {
		t.Fatalf("expected 200 for preflight, got %d", rec.Code)
	}
}

func TestRateLimitLoginEndpoint(t *testing.T) {
	limiter := ratelimit.NewLimiter(2, time.Minute)
	defer limiter.Stop()

	h := RateLimit(limiter, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	newReq := func() *http.Request {
		req := httptest.NewRequest("POST", "/api/login", nil)
		req.RemoteAddr = "203.0.113.7:4444"
		return req
	}

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newReq())
		if rec.Code != 200 {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newReq())
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	// Another client is unaffected.
	other := httptest.NewRequest("POST", "/api/login", nil)
	other.RemoteAddr = "198.51.100.9:5555"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != 200 {
		t.Fatalf("expected independent limit per client, got %d", rec.Code)
	}

	// Unlimited paths pass through regardless.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/usuarios", nil))
	if rec.Code != 200 {
		t.Fatalf("expected pass-through for unlimited path, got %d", rec.Code)
	}
}
