package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// EngineError is the JSON error body for all failed requests.
type EngineError struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

const (
	errTypeValidation = "validation_error"
	errTypeNotFound   = "not_found"
	errTypeConflict   = "conflict"
	errTypeInternal   = "internal_error"
)

// writeError writes a structured JSON error and logs internal failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string) {
	if status >= http.StatusInternalServerError {
		s.logger.Printf("request %s failed: %s", middleware.GetReqID(r.Context()), message)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(EngineError{
		Type:      errType,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
