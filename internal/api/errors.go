package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Error types surfaced in the envelope.
const (
	ErrTypeValidation = "VALIDATION_ERROR"
	ErrTypeConfig     = "CONFIG_ERROR"
	ErrTypeNotFound   = "NOT_FOUND"
	ErrTypeInternal   = "INTERNAL_ERROR"
)

func statusFor(errType string) int {
	switch errType {
	case ErrTypeValidation, ErrTypeConfig:
		return http.StatusBadRequest
	case ErrTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, errType, message string, ctx map[string]any) {
	apiErr := APIError{
		Type:      errType,
		Message:   message,
		Context:   ctx,
		RequestID: middleware.GetReqID(r.Context()),
	}
	status := statusFor(errType)
	if status >= 500 {
		s.logger.Error("request failed",
			zap.String("type", errType),
			zap.String("path", r.URL.Path),
			zap.String("request_id", apiErr.RequestID),
			zap.String("message", message))
	} else {
		s.logger.Warn("request rejected",
			zap.String("type", errType),
			zap.String("path", r.URL.Path),
			zap.String("request_id", apiErr.RequestID),
			zap.String("message", message))
	}
	s.writeJSON(w, status, apiErr)
}

// recoverer converts panics into structured 500s instead of dropped
// connections.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				s.logger.Error("panic recovered",
					zap.Any("panic", rvr),
					zap.String("path", r.URL.Path),
					zap.String("request_id", middleware.GetReqID(r.Context())))
				s.writeError(w, r, ErrTypeInternal, "internal server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
