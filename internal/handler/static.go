package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// mimeTypes maps known extensions; anything else is served as raw bytes.
var mimeTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".json": "application/json; charset=utf-8",
}

// StaticHandler serves files from the public root. It is the fallback for
// every request no API route matched.
type StaticHandler struct {
	root   string
	logger *slog.Logger
}

// NewStaticHandler creates a static resolver rooted at dir.
func NewStaticHandler(dir string, logger *slog.Logger) (*StaticHandler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve public root: %w", err)
	}
	return &StaticHandler{root: root, logger: logger}, nil
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Path
	if rel == "/" {
		rel = "index.html"
	} else {
		rel = strings.TrimPrefix(rel, "/")
	}

	resolved := filepath.Join(h.root, filepath.FromSlash(rel))

	// Anything that resolves outside the public root is a traversal attempt.
	if resolved != h.root && !strings.HasPrefix(resolved, h.root+string(os.PathSeparator)) {
		h.logger.Warn("path traversal rejected", slog.String("path", r.URL.Path))
		writeError(w, http.StatusForbidden, "403 - Prohibido")
		return
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "404 - No encontrado")
		return
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		h.logger.Error("failed to read static file",
			slog.String("path", resolved),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "500 - Error interno")
		return
	}

	contentType, ok := mimeTypes[strings.ToLower(filepath.Ext(resolved))]
	if !ok {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
