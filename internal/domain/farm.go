package domain

import "context"

// Farm is a registered finca. Records are append-only: once written they are
// never updated or deleted through the portal.
type Farm struct {
	ID            string  `json:"id"`
	NombreFinca   string  `json:"nombre_finca"`
	Vereda        string  `json:"vereda"`
	Hectareas     float64 `json:"hectareas"`
	FechaCultivo  string  `json:"fecha_cultivo"`
	Dificultades  string  `json:"dificultades,omitempty"`
	Correo        string  `json:"correo"`
	UsuarioID     string  `json:"usuario_id"`
	FechaRegistro string  `json:"fecha_registro"`
}

// FarmRepository defines data access for farms.
type FarmRepository interface {
	List(ctx context.Context) ([]Farm, error)
	ListByOwner(ctx context.Context, usuarioID string) ([]Farm, error)
	Create(ctx context.Context, farm *Farm) error
}
