package api

import (
	"encoding/json"
	"net/http"
)

type ChatRequest struct {
	Query     string `json:"query" validate:"required"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError sends the structured error body. Only a message string
// crosses the boundary; raw internal state and credentials never do.
func WriteError(w http.ResponseWriter, httpCode int, message string) {
	WriteJSON(w, httpCode, ErrorResponse{Code: httpCode, Message: message})
}
