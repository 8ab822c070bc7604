// Package apierrors defines the typed error hierarchy used at Aurora's
// HTTP boundary. Handlers return these (or wrap them with fmt.Errorf
// %w) and a single translation point maps them to status codes.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFound indicates the named entity does not exist.
type NotFound struct {
	Entity string
	Key    string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// Validation indicates the request failed input validation.
type Validation struct {
	Message string
}

func (e *Validation) Error() string {
	return e.Message
}

// Internal wraps an unexpected failure. Its Error text includes the
// cause's message.
type Internal struct {
	Message string
	Cause   error
}

func (e *Internal) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Internal) Unwrap() error {
	return e.Cause
}

// NewNotFound builds a NotFound error for entity/key.
func NewNotFound(entity, key string) error {
	return &NotFound{Entity: entity, Key: key}
}

// NewValidation builds a Validation error with the given message.
func NewValidation(format string, args ...any) error {
	return &Validation{Message: fmt.Sprintf(format, args...)}
}

// NewInternal wraps cause as an Internal error.
func NewInternal(message string, cause error) error {
	return &Internal{Message: message, Cause: cause}
}

// StatusCode maps err to an HTTP status code. Unrecognized errors map to
// 500.
func StatusCode(err error) int {
	var nf *NotFound
	var val *Validation
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &val):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
