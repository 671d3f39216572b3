package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/biokuam/portal/internal/domain"
	"github.com/biokuam/portal/internal/storage"
)

// UserRepository persists the user collection through a CollectionStore.
// A mutex serializes the load-mutate-save sequence so that two concurrent
// registrations cannot both pass the uniqueness check.
type UserRepository struct {
	store  storage.CollectionStore
	mu     sync.Mutex
	logger *slog.Logger
}

// NewUserRepository creates a user repository over store.
func NewUserRepository(store storage.CollectionStore, logger *slog.Logger) *UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserRepository{store: store, logger: logger}
}

// List returns all users in insertion order.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.store.Load(ctx, storage.UsersCollection, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindByID returns the user whose identifier equals id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
}

// FindByCorreo returns the user registered under correo.
func (r *UserRepository) FindByCorreo(ctx context.Context, correo string) (*domain.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Correo == correo {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("%w: user by correo", domain.ErrNotFound)
}

// Create appends user to the collection. Fails with ErrConflict if the email
// is already registered. The duplicate check and the write happen under the
// same lock.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var users []domain.User
	if err := r.store.Load(ctx, storage.UsersCollection, &users); err != nil {
		return err
	}
	for i := range users {
		if users[i].Correo == user.Correo {
			return domain.NewError(domain.ErrConflict, "Email ya registrado")
		}
	}
	users = append(users, *user)
	if err := r.store.Save(ctx, storage.UsersCollection, users); err != nil {
		return err
	}
	r.logger.Info("user created", slog.String("user_id", user.ID))
	return nil
}

// Count returns the current number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	users, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}
