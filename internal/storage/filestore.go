package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/biokuam/portal/internal/domain"
)

// FileStore keeps each collection in one JSON file under a data directory.
// Writes go to a temp file first and are renamed into place, so readers never
// observe a half-written collection.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) Load(_ context.Context, name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			// Collection not written yet: leave out as its zero (empty) slice.
			return nil
		}
		s.logger.Error("failed to read collection",
			slog.String("collection", name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: read %s: %v", domain.ErrStorage, name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		// Corrupt content is fatal to the request, never silently emptied.
		s.logger.Error("collection file is corrupt",
			slog.String("collection", name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: decode %s: %v", domain.ErrStorage, name, err)
	}
	return nil
}

func (s *FileStore) Save(_ context.Context, name string, records any) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorage, name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, name, err)
	}
	return nil
}

func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("%w: data dir: %v", domain.ErrStorage, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrStorage, s.dir)
	}
	return nil
}
