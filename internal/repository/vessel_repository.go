package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/biokuam/portal/internal/domain"
	"github.com/biokuam/portal/internal/storage"
)

// VesselRepository persists the vessel collection through a CollectionStore.
// The IMEI uniqueness check and the append happen under one lock.
type VesselRepository struct {
	store  storage.CollectionStore
	mu     sync.Mutex
	logger *slog.Logger
}

// NewVesselRepository creates a vessel repository over store.
func NewVesselRepository(store storage.CollectionStore, logger *slog.Logger) *VesselRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &VesselRepository{store: store, logger: logger}
}

// List returns all vessels in insertion order.
func (r *VesselRepository) List(ctx context.Context) ([]domain.Vessel, error) {
	var vessels []domain.Vessel
	if err := r.store.Load(ctx, storage.VesselsCollection, &vessels); err != nil {
		return nil, err
	}
	return vessels, nil
}

// ListByOwner returns the vessels registered by usuarioID.
func (r *VesselRepository) ListByOwner(ctx context.Context, usuarioID string) ([]domain.Vessel, error) {
	vessels, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]domain.Vessel, 0, len(vessels))
	for _, v := range vessels {
		if v.UsuarioID == usuarioID {
			owned = append(owned, v)
		}
	}
	return owned, nil
}

// FindByIMEI returns the vessel registered under imei.
func (r *VesselRepository) FindByIMEI(ctx context.Context, imei string) (*domain.Vessel, error) {
	vessels, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range vessels {
		if vessels[i].IMEIBarco == imei {
			return &vessels[i], nil
		}
	}
	return nil, fmt.Errorf("%w: vessel by imei", domain.ErrNotFound)
}

// Create appends vessel to the collection. Fails with ErrConflict if the
// IMEI is already registered.
func (r *VesselRepository) Create(ctx context.Context, vessel *domain.Vessel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var vessels []domain.Vessel
	if err := r.store.Load(ctx, storage.VesselsCollection, &vessels); err != nil {
		return err
	}
	for i := range vessels {
		if vessels[i].IMEIBarco == vessel.IMEIBarco {
			return domain.NewError(domain.ErrConflict, "IMEI ya registrado")
		}
	}
	vessels = append(vessels, *vessel)
	if err := r.store.Save(ctx, storage.VesselsCollection, vessels); err != nil {
		return err
	}
	r.logger.Info("vessel created",
		slog.String("vessel_id", vessel.ID),
		slog.String("user_id", vessel.UsuarioID),
	)
	return nil
}
