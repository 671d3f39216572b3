package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/biokuam/portal/internal/domain"
	"github.com/biokuam/portal/internal/service"
)

// RegisterResponse is the success envelope for POST /api/registro.
type RegisterResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Usuario domain.UserProfile `json:"usuario"`
	Token   string             `json:"token"`
}

// RegisterHandler handles POST /api/registro.
type RegisterHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewRegisterHandler creates a user registration handler.
func NewRegisterHandler(auth *service.AuthService, logger *slog.Logger) *RegisterHandler {
	return &RegisterHandler{auth: auth, logger: logger}
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	profile, token, err := h.auth.Register(r.Context(), &user)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, RegisterResponse{
		Success: true,
		Message: "Usuario registrado",
		Usuario: *profile,
		Token:   token,
	})
}
