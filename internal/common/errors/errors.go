// internal/common/errors/errors.go

// Package errors provides standardized error handling for the
// recommendation pipeline.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Request rejection: malformed required inputs.
	ErrCodeInvalidProfile ErrorCode = "INVALID_PROFILE"
	ErrCodeInvalidWeights ErrorCode = "INVALID_WEIGHTS"
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// Candidate retrieval.
	ErrCodeIndexQueryFailed  ErrorCode = "INDEX_QUERY_FAILED"
	ErrCodeIndexTimeout      ErrorCode = "INDEX_TIMEOUT"
	ErrCodeCandidateNotFound ErrorCode = "CANDIDATE_NOT_FOUND"
	ErrCodeStoreQueryFailed  ErrorCode = "STORE_QUERY_FAILED"

	// Verification. SOURCE_UNAVAILABLE is always recovered locally: the
	// affected claim degrades to unverifiable or flagged, the pipeline
	// continues.
	ErrCodeSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	ErrCodeSourceTimeout     ErrorCode = "SOURCE_TIMEOUT"
	ErrCodeSourceMalformed   ErrorCode = "SOURCE_MALFORMED"

	// Sessions & configuration.
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeCatalogInvalid  ErrorCode = "CATALOG_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match two StandardErrors by code.
func (e *StandardError) Is(target error) bool {
	var se *StandardError
	if errors.As(target, &se) {
		return e.Code == se.Code
	}
	return false
}

// CodeOf extracts the error code, or empty string for foreign errors.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidProfileError creates a non-retryable request-rejection error.
func NewInvalidProfileError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidProfile,
		Message:   "Student profile failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidWeightsError creates a non-retryable request-rejection error.
// Default weights are never substituted for broken ones.
func NewInvalidWeightsError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidWeights,
		Message:   "Preference weights failed to normalize",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable request-rejection error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request body failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexQueryFailedError creates a retryable candidate index error.
func NewIndexQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexQueryFailed,
		Message:   "Candidate index query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexTimeoutError creates a retryable candidate index timeout error.
func NewIndexTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexTimeout,
		Message:   "Candidate index query timeout",
		Details:   "search exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCandidateNotFoundError marks an index candidate with no backing store
// record. The candidate is dropped from ranking; never fatal.
func NewCandidateNotFoundError(collegeID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCandidateNotFound,
		Message:   "College record missing for index candidate",
		Details:   fmt.Sprintf("collegeId: %s", collegeID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreQueryFailedError creates a retryable data store error.
func NewStoreQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreQueryFailed,
		Message:   "College store query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSourceUnavailableError marks a single authoritative source that did
// not respond. Recovered inside verification, never propagated.
func NewSourceUnavailableError(source string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeSourceUnavailable,
		Message:   fmt.Sprintf("Authoritative source '%s' unavailable", source),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSourceTimeoutError marks a source that exceeded its per-query timeout.
func NewSourceTimeoutError(source string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceTimeout,
		Message:   fmt.Sprintf("Authoritative source '%s' timeout", source),
		Details:   "query exceeded per-source timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSourceMalformedError marks a source that returned an unparseable
// payload. Treated as "source did not respond" for that query only.
func NewSourceMalformedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceMalformed,
		Message:   fmt.Sprintf("Authoritative source '%s' returned malformed data", source),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable session lookup error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Recommendation session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogInvalidError creates a non-retryable source catalog error.
func NewCatalogInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Source catalog failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry Policy
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeIndexQueryFailed,
		ErrCodeStoreQueryFailed,
		ErrCodeSourceUnavailable:
		return 3 // Retryable technical errors

	case ErrCodeIndexTimeout,
		ErrCodeSourceTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Request rejections and terminal statuses: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROFILE") || strings.Contains(codeStr, "WEIGHTS") || strings.Contains(codeStr, "REQUEST"):
		return "VALIDATION"
	case strings.Contains(codeStr, "INDEX") || strings.Contains(codeStr, "CANDIDATE") || strings.Contains(codeStr, "STORE"):
		return "RETRIEVAL"
	case strings.Contains(codeStr, "SOURCE"):
		return "VERIFICATION"
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "CATALOG"):
		return "SESSION/CONFIG"
	default:
		return "OTHER"
	}
}
