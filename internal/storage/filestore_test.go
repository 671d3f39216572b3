package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/biokuam/portal/internal/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	ctx := context.Background()

	in := []domain.User{
		{ID: "BKM1", Nombre: "Ana", Correo: "ana@example.com"},
		{ID: "BKM2", Nombre: "Luis", Correo: "luis@example.com"},
	}
	if err := store.Save(ctx, UsersCollection, in); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var out []domain.User
	if err := store.Load(ctx, UsersCollection, &out); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 users, got %d", len(out))
	}
	if out[0].ID != "BKM1" || out[1].ID != "BKM2" {
		t.Fatalf("insertion order not preserved: %v", out)
	}
}

func TestFileStoreMissingCollection(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	var out []domain.Farm
	if err := store.Load(context.Background(), FarmsCollection, &out); err != nil {
		t.Fatalf("missing collection should not error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty collection, got %d records", len(out))
	}
}

func TestFileStoreCorruptCollection(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, UsersCollection), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	var out []domain.User
	err = store.Load(context.Background(), UsersCollection, &out)
	if err == nil {
		t.Fatalf("expected error for corrupt collection file")
	}
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestFileStoreSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, VesselsCollection, []domain.Vessel{{ID: "BARCO_1"}}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save(ctx, VesselsCollection, []domain.Vessel{{ID: "BARCO_1"}, {ID: "BARCO_2"}}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	// No temp files should survive a completed save.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != VesselsCollection {
		t.Fatalf("expected only %s in data dir, got %v", VesselsCollection, entries)
	}
}
