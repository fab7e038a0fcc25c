package model

import (
	"errors"
	"strings"
)

// Error kinds. Handlers map them to status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func NotFoundError(msg string) error {
	return &kindError{kind: ErrNotFound, msg: msg}
}

func InvalidStateError(msg string) error {
	return &kindError{kind: ErrInvalidState, msg: msg}
}

func ConflictError(msg string) error {
	return &kindError{kind: ErrConflict, msg: msg}
}

func UnauthorizedError(msg string) error {
	return &kindError{kind: ErrUnauthorized, msg: msg}
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned before any persistence call when the input is malformed.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// OrNil lets callers accumulate field errors and return a plain nil error when there were none.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
