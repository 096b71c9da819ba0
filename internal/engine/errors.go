package engine

import (
	"errors"
	"fmt"
)

// GenerateError represents an error detected during query generation.
//
// Field-scoped errors (unresolved field, incompatible operator, malformed
// condition) are collected as warnings and never abort the batch. Batch
// errors (no input, nothing resolvable) terminate the state machine in
// StateFailed and surface as diagnostic comment text, not as a Go error.
type GenerateError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field identifies the offending field token, "" for batch errors.
	Field string
}

// ErrorCode categorizes generation errors.
type ErrorCode string

const (
	// ErrCodeParse indicates malformed condition syntax.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeFieldNotFound indicates a token matched no schema path.
	ErrCodeFieldNotFound ErrorCode = "FIELD_NOT_FOUND"

	// ErrCodeOperatorIncompatible indicates an operator applied to a type
	// that does not whitelist it.
	ErrCodeOperatorIncompatible ErrorCode = "OPERATOR_INCOMPATIBLE"

	// ErrCodeNoQueryableFields indicates no token resolved to any
	// queryable path - there is nothing to project.
	ErrCodeNoQueryableFields ErrorCode = "NO_QUERYABLE_FIELDS"

	// ErrCodeNoInput indicates a missing table, column, or schema.
	ErrCodeNoInput ErrorCode = "NO_INPUT"
)

// Error implements the error interface.
func (e *GenerateError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldScoped reports whether the error is scoped to a single field or
// condition rather than the whole generation call.
func (e *GenerateError) FieldScoped() bool {
	switch e.Code {
	case ErrCodeParse, ErrCodeFieldNotFound, ErrCodeOperatorIncompatible:
		return true
	}
	return false
}

// IsFieldNotFound returns true if the error is a field resolution failure.
// Uses errors.As to handle wrapped errors.
func IsFieldNotFound(err error) bool {
	var ge *GenerateError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodeFieldNotFound
	}
	return false
}

// NewFieldNotFoundError creates a GenerateError for an unresolved token.
func NewFieldNotFoundError(field string) *GenerateError {
	return &GenerateError{
		Code:    ErrCodeFieldNotFound,
		Message: "field not found in document structure",
		Field:   field,
	}
}

// NewNoInputError creates a batch-scoped GenerateError for missing input.
func NewNoInputError(message string) *GenerateError {
	return &GenerateError{Code: ErrCodeNoInput, Message: message}
}

// NewNoQueryableFieldsError creates the batch-scoped error for a call where
// no token resolved to a queryable path.
func NewNoQueryableFieldsError() *GenerateError {
	return &GenerateError{
		Code:    ErrCodeNoQueryableFields,
		Message: "no valid fields found for selection; check field names against the document structure",
	}
}
