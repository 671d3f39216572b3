package repository

import (
	"context"
	"log/slog"
	"sync"

	"github.com/biokuam/portal/internal/domain"
	"github.com/biokuam/portal/internal/storage"
)

// FarmRepository persists the farm collection through a CollectionStore.
type FarmRepository struct {
	store  storage.CollectionStore
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFarmRepository creates a farm repository over store.
func NewFarmRepository(store storage.CollectionStore, logger *slog.Logger) *FarmRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &FarmRepository{store: store, logger: logger}
}

// List returns all farms in insertion order.
func (r *FarmRepository) List(ctx context.Context) ([]domain.Farm, error) {
	var farms []domain.Farm
	if err := r.store.Load(ctx, storage.FarmsCollection, &farms); err != nil {
		return nil, err
	}
	return farms, nil
}

// ListByOwner returns the farms registered by usuarioID.
func (r *FarmRepository) ListByOwner(ctx context.Context, usuarioID string) ([]domain.Farm, error) {
	farms, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]domain.Farm, 0, len(farms))
	for _, f := range farms {
		if f.UsuarioID == usuarioID {
			owned = append(owned, f)
		}
	}
	return owned, nil
}

// Create appends farm to the collection.
func (r *FarmRepository) Create(ctx context.Context, farm *domain.Farm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var farms []domain.Farm
	if err := r.store.Load(ctx, storage.FarmsCollection, &farms); err != nil {
		return err
	}
	farms = append(farms, *farm)
	if err := r.store.Save(ctx, storage.FarmsCollection, farms); err != nil {
		return err
	}
	r.logger.Info("farm created",
		slog.String("farm_id", farm.ID),
		slog.String("user_id", farm.UsuarioID),
	)
	return nil
}
