// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// ErrorHandler writes standardized error responses on the API surface.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// WriteError normalizes err to a StandardError, logs it, and writes the
// JSON error body with the mapped HTTP status.
func (h *ErrorHandler) WriteError(w http.ResponseWriter, err error) {
	stdErr := h.normalizeError(err)

	h.logger.Error("request failed", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"category":  GetErrorCategory(stdErr.Code),
		"details":   stdErr.Details,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(stdErr.Code))
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": stdErr,
	})
}

// normalizeError ensures we always have a StandardError.
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// HTTPStatus maps an error code to the status returned to the caller.
// Request rejections are client errors; infrastructure failures are 502/504
// so the UI can distinguish "fix your input" from "try again".
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidProfile, ErrCodeInvalidWeights, ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ErrCodeIndexTimeout, ErrCodeSourceTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeIndexQueryFailed, ErrCodeStoreQueryFailed, ErrCodeSourceUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
