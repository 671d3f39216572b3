package domain

import "context"

// Vessel is a registered barco (floating IoT sensor platform). The IMEI acts
// as a global unique key across the collection.
type Vessel struct {
	ID              string   `json:"id"`
	NombreBarco     string   `json:"nombre_barco"`
	IMEIBarco       string   `json:"imei_barco"`
	Funcionalidades []string `json:"funcionalidades"`
	Correo          string   `json:"correo"`
	UsuarioID       string   `json:"usuario_id"`
	FechaRegistro   string   `json:"fecha_registro"`
}

// VesselRepository defines data access for vessels.
type VesselRepository interface {
	List(ctx context.Context) ([]Vessel, error)
	ListByOwner(ctx context.Context, usuarioID string) ([]Vessel, error)
	FindByIMEI(ctx context.Context, imei string) (*Vessel, error)
	Create(ctx context.Context, vessel *Vessel) error
}
