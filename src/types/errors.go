package types

import (
	"errors"
	"net/http"
)

type ErrKind string

const (
	ErrNotFound           ErrKind = "not_found"
	ErrValidation         ErrKind = "validation"
	ErrConflict           ErrKind = "conflict"
	ErrLeadTime           ErrKind = "lead_time"
	ErrAuthorization      ErrKind = "authorization"
	ErrInvalidTransition  ErrKind = "invalid_transition"
	ErrCancellationWindow ErrKind = "cancellation_window"
	ErrAlreadyReviewed    ErrKind = "already_reviewed"
	ErrStorage            ErrKind = "storage"
)

// APIError is the structured failure surfaced at every operation boundary.
// Storage errors are retryable by the caller; the business-rule kinds are not.
type APIError struct {
	Kind    ErrKind `json:"kind"`
	Message string  `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Status() int {
	switch e.Kind {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrAuthorization:
		return http.StatusForbidden
	case ErrConflict:
		return http.StatusConflict
	case ErrStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func NewAPIError(kind ErrKind, message string) *APIError {
	return &APIError{Kind: kind, Message: message}
}

// KindOf extracts the error kind, or empty string for unclassified errors.
func KindOf(err error) ErrKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}
