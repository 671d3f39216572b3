package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/biokuam/portal/internal/storage"
)

// Pinger is implemented by optional dependencies the readiness check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness endpoints.
type HealthHandler struct {
	store  storage.CollectionStore
	cache  Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a health handler. cache may be nil when no Redis
// is configured.
func NewHealthHandler(store storage.CollectionStore, cache Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{store: store, cache: cache, logger: logger}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness handles GET /readyz: ready only when the storage backend (and
// Redis, when configured) answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	ready := true

	if err := h.store.Ping(ctx); err != nil {
		checks["storage"] = "error: " + err.Error()
		ready = false
	} else {
		checks["storage"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["redis"] = "error: " + err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := "ready"
	code := http.StatusOK
	if !ready {
		status = "not_ready"
		code = http.StatusServiceUnavailable
		h.logger.Warn("readiness check failed", slog.Any("checks", checks))
	}
	writeJSON(w, code, map[string]any{"status": status, "checks": checks})
}
