package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger emits structured audit records for security-relevant actions.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

func (al *Logger) log(ctx context.Context, userID, action, resource, resourceID, status string) {
	al.logger.InfoContext(ctx, "audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.Time("timestamp", time.Now()),
	)
}

// LogRegistration records a successful user/farm/vessel registration.
func (al *Logger) LogRegistration(ctx context.Context, userID, resource, resourceID string) {
	al.log(ctx, userID, "register", resource, resourceID, "ok")
}

// LogLogin records a login attempt outcome.
func (al *Logger) LogLogin(ctx context.Context, userID, status string) {
	al.log(ctx, userID, "login", "session", "", status)
}

// LogDenied records a rejected request (missing or invalid credential).
func (al *Logger) LogDenied(ctx context.Context, path, reason string) {
	al.log(ctx, "", "access_denied", "api", path, reason)
}
