package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/biokuam/portal/internal/upstream/gemini"
)

// ChatRequest carries the client's conversation history. The history is
// forwarded verbatim; the system instruction is server-side only.
type ChatRequest struct {
	Contents json.RawMessage `json:"contents"`
}

// ChatResponse is the success envelope for POST /api/gemini.
type ChatResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
}

// ChatHandler handles POST /api/gemini.
type ChatHandler struct {
	client *gemini.Client
	logger *slog.Logger
}

// NewChatHandler creates an AI-assistant proxy handler.
func NewChatHandler(client *gemini.Client, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{client: client, logger: logger}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	text, err := h.client.Generate(r.Context(), req.Contents)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Success: true, Text: text})
}
