package test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/biokuam/portal/internal/events"
	"github.com/biokuam/portal/internal/handler"
	"github.com/biokuam/portal/internal/repository"
	"github.com/biokuam/portal/internal/security/audit"
	"github.com/biokuam/portal/internal/security/auth"
	"github.com/biokuam/portal/internal/security/middleware"
	"github.com/biokuam/portal/internal/service"
	"github.com/biokuam/portal/internal/storage"
)

// TestServerHelper runs the full route table over in-memory storage, with
// the same middleware chain the real server uses.
type TestServerHelper struct {
	Server *httptest.Server
	Hub    *events.Hub
	Tokens *auth.TokenManager
}

func NewTestServer(t *testing.T) *TestServerHelper {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := storage.NewMemStore()
	userRepo := repository.NewUserRepository(store, log)
	farmRepo := repository.NewFarmRepository(store, log)
	vesselRepo := repository.NewVesselRepository(store, log)

	tokens := auth.NewTokenManager("integration-secret", "biokuam", time.Hour)
	auditLogger := audit.NewLogger(log)
	hub := events.NewHub()

	authService := service.NewAuthService(userRepo, tokens, hub, auditLogger, log)
	farmService := service.NewFarmService(farmRepo, hub, auditLogger, log)
	vesselService := service.NewVesselService(vesselRepo, hub, auditLogger, log)

	publicDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(publicDir, "index.html"), []byte("<html>Biokuam</html>"), 0o644); err != nil {
		t.Fatalf("write index fixture: %v", err)
	}
	staticHandler, err := handler.NewStaticHandler(publicDir, log)
	if err != nil {
		t.Fatalf("create static handler: %v", err)
	}
	healthHandler := handler.NewHealthHandler(store, nil, log)

	mux := http.NewServeMux()
	mux.Handle("POST /api/login", handler.NewLoginHandler(authService, log))
	mux.Handle("POST /api/registro", handler.NewRegisterHandler(authService, log))
	mux.Handle("POST /api/registro-finca", handler.NewFarmRegisterHandler(farmService, log))
	mux.Handle("POST /api/registro-barco", handler.NewVesselRegisterHandler(vesselService, log))
	mux.Handle("GET /api/usuarios", handler.NewUserListHandler(authService, log))
	mux.Handle("GET /api/fincas", handler.NewFarmListHandler(farmService, log))
	mux.Handle("GET /api/barcos", handler.NewVesselListHandler(vesselService, log))
	mux.Handle("GET /ws/eventos", handler.NewEventsHandler(hub, log))
	mux.HandleFunc("GET /healthz", healthHandler.Liveness)
	mux.HandleFunc("GET /readyz", healthHandler.Readiness)
	mux.Handle("/", staticHandler)

	root := middleware.CORS(middleware.Auth(tokens, auditLogger, log)(mux))

	return &TestServerHelper{
		Server: httptest.NewServer(root),
		Hub:    hub,
		Tokens: tokens,
	}
}

func (h *TestServerHelper) Close() {
	h.Server.Close()
}

func (h *TestServerHelper) URL() string {
	return h.Server.URL
}

// AssertStatusCode helper function
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d", expected, resp.StatusCode)
	}
}
