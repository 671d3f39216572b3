package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/biokuam/portal/internal/domain"
	"github.com/biokuam/portal/internal/events"
	"github.com/biokuam/portal/internal/featureflags"
	"github.com/biokuam/portal/internal/observability/metrics"
	"github.com/biokuam/portal/internal/security/audit"
	"github.com/biokuam/portal/internal/storage"
)

// FarmService handles finca registration and listing.
type FarmService struct {
	farms    domain.FarmRepository
	hub      *events.Hub
	auditLog *audit.Logger
	logger   *slog.Logger
}

// NewFarmService creates a farm service.
func NewFarmService(farms domain.FarmRepository, hub *events.Hub, auditLog *audit.Logger, logger *slog.Logger) *FarmService {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &FarmService{farms: farms, hub: hub, auditLog: auditLog, logger: logger}
}

// RegisterResult reports where a record landed.
type RegisterResult struct {
	ID      string
	Archivo string
}

// Register validates and persists a farm on behalf of usuarioID.
func (s *FarmService) Register(ctx context.Context, farm *domain.Farm, usuarioID string) (*RegisterResult, error) {
	if usuarioID == "" {
		return nil, domain.NewError(domain.ErrUnauthorized, "Token inválido")
	}
	if farm.NombreFinca == "" || farm.Vereda == "" || farm.Hectareas <= 0 || farm.FechaCultivo == "" {
		return nil, domain.NewError(domain.ErrBadRequest, "Faltan datos requeridos")
	}

	farm.ID = newRecordID("FINCA")
	farm.UsuarioID = usuarioID
	farm.FechaRegistro = time.Now().UTC().Format(time.RFC3339)

	if err := s.farms.Create(ctx, farm); err != nil {
		return nil, err
	}

	metrics.ObserveRegistration("finca")
	s.auditLog.LogRegistration(ctx, usuarioID, "finca", farm.ID)
	s.hub.Publish(events.Event{Tipo: "finca", ID: farm.ID, Fecha: farm.FechaRegistro})

	return &RegisterResult{ID: farm.ID, Archivo: storage.FarmsCollection}, nil
}

// List returns the caller's farms, or every farm when the legacy listings
// flag is on.
func (s *FarmService) List(ctx context.Context, usuarioID string) ([]domain.Farm, error) {
	if featureflags.Enabled(featureflags.LegacyListings) {
		return s.farms.List(ctx)
	}
	return s.farms.ListByOwner(ctx, usuarioID)
}

// newRecordID builds {TYPE}_{timestamp}_{random-suffix} identifiers.
func newRecordID(tipo string) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%d_%s", tipo, time.Now().UnixMilli(), suffix)
}
