package service

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/biokuam/portal/internal/domain"
	"github.com/biokuam/portal/internal/events"
	"github.com/biokuam/portal/internal/featureflags"
	"github.com/biokuam/portal/internal/observability/metrics"
	"github.com/biokuam/portal/internal/security/audit"
	"github.com/biokuam/portal/internal/storage"
)

// correoPattern is the same loose local@domain.tld check the registration
// form applies. Full RFC 5322 compliance is not the goal.
var correoPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// VesselService handles barco registration and listing.
type VesselService struct {
	vessels  domain.VesselRepository
	hub      *events.Hub
	auditLog *audit.Logger
	logger   *slog.Logger
}

// NewVesselService creates a vessel service.
func NewVesselService(vessels domain.VesselRepository, hub *events.Hub, auditLog *audit.Logger, logger *slog.Logger) *VesselService {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &VesselService{vessels: vessels, hub: hub, auditLog: auditLog, logger: logger}
}

// Register validates and persists a vessel on behalf of usuarioID. The IMEI
// must be unique across the collection.
func (s *VesselService) Register(ctx context.Context, vessel *domain.Vessel, usuarioID string) (*RegisterResult, error) {
	if usuarioID == "" {
		return nil, domain.NewError(domain.ErrUnauthorized, "Token inválido")
	}
	if vessel.NombreBarco == "" || len(vessel.IMEIBarco) < 8 ||
		len(vessel.Funcionalidades) == 0 || !correoPattern.MatchString(vessel.Correo) {
		return nil, domain.NewError(domain.ErrBadRequest, "Faltan datos requeridos")
	}

	vessel.ID = newRecordID("BARCO")
	vessel.UsuarioID = usuarioID
	vessel.FechaRegistro = time.Now().UTC().Format(time.RFC3339)

	if err := s.vessels.Create(ctx, vessel); err != nil {
		return nil, err
	}

	metrics.ObserveRegistration("barco")
	s.auditLog.LogRegistration(ctx, usuarioID, "barco", vessel.ID)
	s.hub.Publish(events.Event{Tipo: "barco", ID: vessel.ID, Fecha: vessel.FechaRegistro})

	return &RegisterResult{ID: vessel.ID, Archivo: storage.VesselsCollection}, nil
}

// List returns the caller's vessels, or every vessel when the legacy
// listings flag is on.
func (s *VesselService) List(ctx context.Context, usuarioID string) ([]domain.Vessel, error) {
	if featureflags.Enabled(featureflags.LegacyListings) {
		return s.vessels.List(ctx)
	}
	return s.vessels.ListByOwner(ctx, usuarioID)
}
