package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/biokuam/portal/internal/domain"
)

// PostgresStore keeps each collection as a single jsonb document, one row per
// collection. The whole-collection load/save contract is identical to the
// file backend, which keeps the repositories oblivious to the driver.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore opens a connection pool against url and ensures the
// collections table exists.
func NewPostgresStore(ctx context.Context, url string, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS collections (
			name       text PRIMARY KEY,
			doc        jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure collections table: %w", err)
	}

	logger.Info("postgres collection store ready")
	return &PostgresStore{db: db, logger: logger}, nil
}

func (s *PostgresStore) Load(ctx context.Context, name string, out any) error {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM collections WHERE name = $1`, name,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logger.Error("failed to load collection",
			slog.String("collection", name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: load %s: %v", domain.ErrStorage, name, err)
	}
	if err := json.Unmarshal(doc, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrStorage, name, err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, name string, records any) error {
	doc, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorage, name, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collections (name, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		name, doc,
	)
	if err != nil {
		s.logger.Error("failed to save collection",
			slog.String("collection", name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: save %s: %v", domain.ErrStorage, name, err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }
