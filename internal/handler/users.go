package handler

import (
	"log/slog"
	"net/http"

	"github.com/biokuam/portal/internal/domain"
	"github.com/biokuam/portal/internal/service"
)

// UserListHandler handles GET /api/usuarios. The route stays unauthenticated
// for compatibility, but only sanitized projections leave the server.
type UserListHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewUserListHandler creates a user listing handler.
func NewUserListHandler(auth *service.AuthService, logger *slog.Logger) *UserListHandler {
	return &UserListHandler{auth: auth, logger: logger}
}

func (h *UserListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.auth.ListProfiles(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if profiles == nil {
		profiles = []domain.UserProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}
