package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/isdelr/clinique-espoir-be/internal/models"
)

// Replier answers a patient's chat message.
type Replier interface {
	Reply(ctx context.Context, prompt string) string
}

// ChatHandler proxies the AI chat widget.
type ChatHandler struct {
	assistant Replier
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(assistant Replier) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// Send answers one message. Model failures still produce a 200 with a
// fallback reply.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, &models.ValidationError{Fields: []string{"message"}}, "")
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Reply: h.assistant.Reply(r.Context(), message)})
}
