// Package storage provides whole-collection persistence. Each named
// collection is one serialized JSON array; there are no partial updates.
package storage

import "context"

// Collection file names. They double as the "archivo" label returned by the
// registration endpoints, so they are part of the external contract.
const (
	UsersCollection   = "usuarios.txt"
	FarmsCollection   = "fincas.txt"
	VesselsCollection = "barcos.txt"
)

// CollectionStore reads and writes a named collection as a single blob.
// Load decodes into out, which must be a pointer to a slice; a collection
// that has never been written decodes to an empty slice. Save overwrites the
// whole collection. Callers own the read-modify-write sequence.
type CollectionStore interface {
	Load(ctx context.Context, name string, out any) error
	Save(ctx context.Context, name string, records any) error
	Ping(ctx context.Context) error
}
