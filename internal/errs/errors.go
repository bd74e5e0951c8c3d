package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every error surfaced to a client wraps exactly one of these.
var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNotFound         = errors.New("not found")
)

// FieldError describes which field or query parameter was rejected and why.
type FieldError struct {
	Kind    error
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// Validation reports a malformed or out-of-bounds body field.
func Validation(field, message string) error {
	return &FieldError{Kind: ErrValidation, Field: field, Message: message}
}

// InvalidParameter reports a malformed query parameter.
func InvalidParameter(param, message string) error {
	return &FieldError{Kind: ErrInvalidParameter, Field: param, Message: message}
}

// NotFound reports that the referenced entity does not exist.
func NotFound(entity string, id any) error {
	return &FieldError{
		Kind:    ErrNotFound,
		Field:   "id",
		Message: fmt.Sprintf("%s %v not found", entity, id),
	}
}

// ToHTTP maps an error to the status code returned to the client.
func ToHTTP(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
