package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Domain sentinels. Wrap with fmt.Errorf("%w: ...") to attach detail.
var (
	ErrUnknownAction  = errors.New("unknown webhook action")
	ErrScopeViolation = errors.New("organization-only action is not allowed on a project webhook")
	ErrNotFound       = errors.New("not found")
)

// ValidationError marks malformed endpoint input. The field name is kept so
// handlers can surface it in error details.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeUnknownAction  = "UNKNOWN_ACTION"
	ErrCodeScopeViolation = "SCOPE_VIOLATION"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}

// WriteDomainError maps a domain error onto the HTTP envelope.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownAction):
		WriteError(w, http.StatusBadRequest, ErrCodeUnknownAction, err.Error(), nil)
	case errors.Is(err, ErrScopeViolation):
		WriteError(w, http.StatusBadRequest, ErrCodeScopeViolation, err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case IsValidation(err):
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", nil)
	}
}
