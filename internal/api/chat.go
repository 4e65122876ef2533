package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/monisha-km/resume-agent/internal/engine"
)

// Responder answers one user message. Satisfied by *engine.Engine.
type Responder interface {
	Chat(ctx context.Context, message string, history []engine.Message, st engine.State) (string, engine.State, error)
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message   string           `json:"message"`
	History   []engine.Message `json:"history,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
}

// ChatResponse is the body of a successful chat turn. SessionID echoes
// back the session the client should thread into its next request.
type ChatResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

// ChatHandler serves the conversation endpoint.
type ChatHandler struct {
	responder Responder
	logger    *slog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(responder Responder, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{responder: responder, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/chat", h.handleChat)
}

// handleChat runs one conversation turn. Limit and admin responses come
// back as ordinary 200 answers; only backend failures map to an error
// status, and the upstream detail never reaches the client.
func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}

	answer, st, err := h.responder.Chat(r.Context(), req.Message, req.History, engine.State{SessionID: req.SessionID})
	if err != nil {
		h.logger.Error("chat turn failed",
			"error", err,
			"session_id", st.SessionID,
			"request_id", RequestID(r.Context()))
		writeError(w, http.StatusBadGateway, "upstream_error",
			"I'm having trouble answering right now. Please try again in a moment.")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Answer: answer, SessionID: st.SessionID})
}
