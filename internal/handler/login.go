package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/biokuam/portal/internal/domain"
	"github.com/biokuam/portal/internal/service"
)

// LoginRequest carries login credentials.
type LoginRequest struct {
	Correo     string `json:"correo"`
	Contrasena string `json:"contrasena"`
}

// LoginResponse is the success envelope for POST /api/login.
type LoginResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Usuario domain.UserProfile `json:"usuario"`
	Token   string             `json:"token"`
}

// LoginHandler handles POST /api/login.
type LoginHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewLoginHandler creates a login handler.
func NewLoginHandler(auth *service.AuthService, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{auth: auth, logger: logger}
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	profile, token, err := h.auth.Login(r.Context(), req.Correo, req.Contrasena)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Message: "Login exitoso",
		Usuario: *profile,
		Token:   token,
	})
}
