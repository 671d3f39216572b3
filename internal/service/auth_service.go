package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/biokuam/portal/internal/domain"
	"github.com/biokuam/portal/internal/events"
	"github.com/biokuam/portal/internal/observability/metrics"
	"github.com/biokuam/portal/internal/security/audit"
	"github.com/biokuam/portal/internal/security/auth"
)

// AuthService handles user registration and login.
type AuthService struct {
	users    domain.UserRepository
	tokens   *auth.TokenManager
	hub      *events.Hub
	auditLog *audit.Logger
	logger   *slog.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(users domain.UserRepository, tokens *auth.TokenManager, hub *events.Hub, auditLog *audit.Logger, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hub:      hub,
		auditLog: auditLog,
		logger:   logger,
	}
}

// Register creates a new account. The caller-supplied password is stored as
// a bcrypt hash; the returned projection never includes it.
func (s *AuthService) Register(ctx context.Context, input *domain.User) (*domain.UserProfile, string, error) {
	if input.Nombre == "" || !strings.Contains(input.Correo, "@") ||
		len(input.Contrasena) < 6 || input.NumDoc == "" || input.TipoDoc == "" {
		return nil, "", domain.NewError(domain.ErrBadRequest, "Datos de registro inválidos")
	}

	// Early duplicate check for a clean conflict; the repository re-checks
	// under its lock so a racing registration still cannot slip through.
	if _, err := s.users.FindByCorreo(ctx, input.Correo); err == nil {
		return nil, "", domain.NewError(domain.ErrConflict, "Email ya registrado")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	if input.ID == "" {
		existing, err := s.users.List(ctx)
		if err != nil {
			return nil, "", err
		}
		input.ID = fmt.Sprintf("BKM%d%03d", time.Now().UnixMilli(), len(existing)+1)
	}
	input.FechaRegistro = time.Now().UTC().Format(time.RFC3339)

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Contrasena), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	input.Contrasena = string(hash)

	if err := s.users.Create(ctx, input); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(input)
	if err != nil {
		s.logger.Error("failed to issue token",
			slog.String("user_id", input.ID),
			slog.String("error", err.Error()),
		)
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	metrics.ObserveRegistration("usuario")
	s.auditLog.LogRegistration(ctx, input.ID, "usuario", input.ID)
	s.hub.Publish(events.Event{Tipo: "usuario", ID: input.ID, Fecha: input.FechaRegistro})

	profile := input.Profile()
	return &profile, token, nil
}

// Login verifies credentials and issues a bearer token. Failures stay
// generic so callers cannot probe which field was wrong.
func (s *AuthService) Login(ctx context.Context, correo, contrasena string) (*domain.UserProfile, string, error) {
	if correo == "" || contrasena == "" {
		return nil, "", domain.NewError(domain.ErrBadRequest, "Correo y contraseña requeridos")
	}

	user, err := s.users.FindByCorreo(ctx, correo)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.ObserveLogin("failed")
			s.auditLog.LogLogin(ctx, "", "unknown_email")
			return nil, "", domain.NewError(domain.ErrUnauthorized, "Credenciales incorrectas")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Contrasena), []byte(contrasena)); err != nil {
		metrics.ObserveLogin("failed")
		s.auditLog.LogLogin(ctx, user.ID, "wrong_password")
		return nil, "", domain.NewError(domain.ErrUnauthorized, "Credenciales incorrectas")
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error("failed to issue token",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	metrics.ObserveLogin("ok")
	s.auditLog.LogLogin(ctx, user.ID, "ok")

	profile := user.Profile()
	return &profile, token, nil
}

// ListProfiles returns sanitized projections of every registered user.
func (s *AuthService) ListProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]domain.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	return profiles, nil
}
