package domain

import "errors"

// Sentinel errors for the portal's failure taxonomy. Handlers map these to
// HTTP status codes; services attach user-facing messages with NewError.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("service unavailable")
	ErrUpstream     = errors.New("upstream failure")
	ErrStorage      = errors.New("storage failure")
)

// Error carries a user-facing message on top of a sentinel kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError wraps a sentinel with a message suitable for the response envelope.
func NewError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Message extracts the user-facing message from err, or returns fallback.
func Message(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}
