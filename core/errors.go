package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific form field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError is returned when a record fails validation.
// Server is set when the payload was rejected by the school API rather than by the form engine.
type ValidationError struct {
	Err    error
	Fields []FieldError
	Server bool
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func NewServerValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds, Server: true}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		msgs := make([]string, 0, len(err.Fields))
		for _, f := range err.Fields {
			msgs = append(msgs, f.Error)
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// FieldMap returns the field errors keyed by field name.
func (err ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		if _, ok := m[f.Field]; !ok {
			m[f.Field] = f.Error
		}
	}
	return m
}

// NetworkError is returned when a request to the school API failed, timed out or the API misbehaved.
type NetworkError struct {
	Op      string
	Status  int // 0 when no response was received
	Err     error
	Timeout bool
}

func NewNetworkError(op string, status int, err error) error {
	return &NetworkError{Op: op, Status: status, Err: err}
}

func (err NetworkError) Error() string {
	switch {
	case err.Timeout:
		return fmt.Sprintf("%s: request timed out", err.Op)
	case err.Status != 0:
		return fmt.Sprintf("%s: server responded with status %d", err.Op, err.Status)
	case err.Err != nil:
		return fmt.Sprintf("%s: %v", err.Op, err.Err)
	default:
		return err.Op + ": request failed"
	}
}

func (err NetworkError) Unwrap() error { return err.Err }

// NotFoundError is returned when the record being read or mutated no longer exists server-side.
type NotFoundError struct {
	Entity string
	ID     string
}

func (err NotFoundError) Error() string {
	if err.ID == "" {
		return err.Entity + " not found"
	}
	return fmt.Sprintf("%s %q not found", err.Entity, err.ID)
}

func IsValidation(err error) bool {
	_, ok := AsValidation(err)
	return ok
}

func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

func IsNetwork(err error) bool {
	var nerr *NetworkError
	return errors.As(err, &nerr)
}

func IsNotFound(err error) bool {
	var nferr *NotFoundError
	return errors.As(err, &nferr)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
