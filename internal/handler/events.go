package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/biokuam/portal/internal/events"
	"github.com/biokuam/portal/internal/security/middleware"
)

// EventsHandler streams registration events over a websocket at
// GET /ws/eventos. Auth is enforced by the middleware before upgrade.
type EventsHandler struct {
	hub    *events.Hub
	logger *slog.Logger
}

// NewEventsHandler creates an event stream handler.
func NewEventsHandler(hub *events.Hub, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is served with wildcard CORS; the websocket follows suit.
	CheckOrigin: func(*http.Request) bool { return true },
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Token requerido")
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	ch, cancel := h.hub.Subscribe()
	defer cancel()

	h.logger.Debug("event stream opened", slog.String("user_id", claims.UserID()))

	// Reader goroutine notices the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev := <-ch:
			ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := ws.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
