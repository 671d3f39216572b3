package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/biokuam/portal/internal/domain"
)

// writeJSON renders v with the portal's standard content type.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders the uniform {success:false, message} envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

// writeDomainError maps a service error onto a status code and envelope.
// Storage and upstream details never reach the client.
func writeDomainError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := http.StatusInternalServerError
	fallback := "Error interno del servidor"

	switch {
	case errors.Is(err, domain.ErrBadRequest):
		status = http.StatusBadRequest
		fallback = "Solicitud inválida"
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
		fallback = "No autorizado"
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		fallback = "403 - Prohibido"
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		fallback = "404 - No encontrado"
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		fallback = "Registro duplicado"
	case errors.Is(err, domain.ErrUnavailable):
		status = http.StatusServiceUnavailable
		fallback = "Servicio no disponible"
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, domain.ErrStorage):
		log.Error("request failed", slog.String("error", err.Error()))
	default:
		log.Error("unexpected error", slog.String("error", err.Error()))
	}

	writeError(w, status, domain.Message(err, fallback))
}
