package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avikal/ragchat/internal/api"
	"github.com/avikal/ragchat/internal/chat"
	"github.com/avikal/ragchat/pkg/logging"
)

// ChatAPI holds the request handlers and their dependencies. It is
// constructed once at startup and injected into the router; there is no
// ambient global engine lookup.
type ChatAPI struct {
	chatService    chat.Service
	requestTimeout time.Duration
	logger         *logging.Logger
}

func NewChatAPI(service chat.Service, requestTimeout time.Duration) *ChatAPI {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &ChatAPI{
		chatService:    service,
		requestTimeout: requestTimeout,
		logger:         logging.NewLogger("ChatHandler"),
	}
}

func (h *ChatAPI) ChatHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var requestData api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		h.logger.Warn("Bad chat request body", "error", err)
		api.WriteError(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if requestData.Query == "" {
		api.WriteError(w, http.StatusBadRequest, "Query cannot be empty.")
		return
	}
	if h.chatService == nil {
		api.WriteError(w, http.StatusServiceUnavailable, "Chat engine is not available.")
		return
	}

	sessionId := requestData.SessionID
	if sessionId == "" {
		sessionId = uuid.New().String()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	answer, err := h.chatService.Chat(ctx, sessionId, requestData.Query)
	if err != nil {
		h.logger.Error("Chat turn failed", "error", err, "sessionId", sessionId)
		api.WriteError(w, http.StatusInternalServerError, "An internal error occurred: "+err.Error())
		return
	}

	api.WriteJSON(w, http.StatusOK, api.ChatResponse{
		Answer:    answer,
		SessionID: sessionId,
	})
}

// HealthHandler reports liveness regardless of engine state; readiness
// of the engine is the chat endpoint's concern.
func (h *ChatAPI) HealthHandler(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, api.HealthResponse{
		Status:  "ok",
		Message: "Chatbot API is running and ready for frontend connections.",
	})
}
