package domain

import "context"

// User is a registered portal account. JSON tags follow the wire contract
// used by the front-end forms (Spanish field names).
type User struct {
	ID            string `json:"id"`
	Nombre        string `json:"nombre"`
	Celular       string `json:"celular,omitempty"`
	Correo        string `json:"correo"`
	TipoDoc       string `json:"tipoDoc"`
	NumDoc        string `json:"numDoc"`
	Contrasena    string `json:"contrasena"` // bcrypt hash at rest, never returned by the API
	FechaRegistro string `json:"fechaRegistro"`
}

// UserProfile is the sanitized projection returned to clients.
type UserProfile struct {
	ID            string `json:"id"`
	Nombre        string `json:"nombre"`
	Correo        string `json:"correo"`
	FechaRegistro string `json:"fechaRegistro,omitempty"`
}

// Profile strips credential material from a user record.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:            u.ID,
		Nombre:        u.Nombre,
		Correo:        u.Correo,
		FechaRegistro: u.FechaRegistro,
	}
}

// UserRepository defines data access for users.
type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByCorreo(ctx context.Context, correo string) (*User, error)
	Create(ctx context.Context, user *User) error
}
