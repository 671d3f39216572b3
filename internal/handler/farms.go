package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/biokuam/portal/internal/domain"
	"github.com/biokuam/portal/internal/security/middleware"
	"github.com/biokuam/portal/internal/service"
)

// RecordResponse is the success envelope for finca/barco registration.
type RecordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Archivo string `json:"archivo"`
	ID      string `json:"id"`
}

// FarmRegisterHandler handles POST /api/registro-finca.
type FarmRegisterHandler struct {
	farms  *service.FarmService
	logger *slog.Logger
}

// NewFarmRegisterHandler creates a farm registration handler.
func NewFarmRegisterHandler(farms *service.FarmService, logger *slog.Logger) *FarmRegisterHandler {
	return &FarmRegisterHandler{farms: farms, logger: logger}
}

func (h *FarmRegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	var farm domain.Farm
	if err := json.NewDecoder(r.Body).Decode(&farm); err != nil {
		writeError(w, http.StatusBadRequest, "Error procesando datos")
		return
	}

	result, err := h.farms.Register(r.Context(), &farm, claims.UserID())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, RecordResponse{
		Success: true,
		Message: "FINCA registrado",
		Archivo: result.Archivo,
		ID:      result.ID,
	})
}

// FarmListHandler handles GET /api/fincas.
type FarmListHandler struct {
	farms  *service.FarmService
	logger *slog.Logger
}

// NewFarmListHandler creates a farm listing handler.
func NewFarmListHandler(farms *service.FarmService, logger *slog.Logger) *FarmListHandler {
	return &FarmListHandler{farms: farms, logger: logger}
}

func (h *FarmListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Token requerido")
		return
	}

	farms, err := h.farms.List(r.Context(), claims.UserID())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if farms == nil {
		farms = []domain.Farm{}
	}
	writeJSON(w, http.StatusOK, farms)
}
