package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/biokuam/portal/internal/domain"
	"github.com/biokuam/portal/internal/security/middleware"
	"github.com/biokuam/portal/internal/service"
)

// VesselRegisterHandler handles POST /api/registro-barco.
type VesselRegisterHandler struct {
	vessels *service.VesselService
	logger  *slog.Logger
}

// NewVesselRegisterHandler creates a vessel registration handler.
func NewVesselRegisterHandler(vessels *service.VesselService, logger *slog.Logger) *VesselRegisterHandler {
	return &VesselRegisterHandler{vessels: vessels, logger: logger}
}

func (h *VesselRegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	var vessel domain.Vessel
	if err := json.NewDecoder(r.Body).Decode(&vessel); err != nil {
		writeError(w, http.StatusBadRequest, "Error procesando datos")
		return
	}

	result, err := h.vessels.Register(r.Context(), &vessel, claims.UserID())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, RecordResponse{
		Success: true,
		Message: "BARCO registrado",
		Archivo: result.Archivo,
		ID:      result.ID,
	})
}

// VesselListHandler handles GET /api/barcos.
type VesselListHandler struct {
	vessels *service.VesselService
	logger  *slog.Logger
}

// NewVesselListHandler creates a vessel listing handler.
func NewVesselListHandler(vessels *service.VesselService, logger *slog.Logger) *VesselListHandler {
	return &VesselListHandler{vessels: vessels, logger: logger}
}

func (h *VesselListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Token requerido")
		return
	}

	vessels, err := h.vessels.List(r.Context(), claims.UserID())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if vessels == nil {
		vessels = []domain.Vessel{}
	}
	writeJSON(w, http.StatusOK, vessels)
}
