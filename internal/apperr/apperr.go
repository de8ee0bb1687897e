// Package apperr holds the error taxonomy shared by the ledger, the
// controller and the command layer.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed operator-supplied field.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Invalid is a shorthand constructor for ValidationError.
func Invalid(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// ConflictError reports an operation that is not allowed in the current
// ledger state, e.g. clocking in while a session is already open.
type ConflictError struct {
	Op     string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// NotFoundError reports a reference to a job or session that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("no %s found", e.Kind)
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// DuplicateCodeWarning is returned alongside a successfully created job when
// other jobs already use the same code. It never aborts the operation.
type DuplicateCodeWarning struct {
	Code     string
	Existing int
}

func (w *DuplicateCodeWarning) Error() string {
	return fmt.Sprintf("job code %s is already used by %d other job(s)", w.Code, w.Existing)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConflict reports whether err is or wraps a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// Operator renders err as the single line shown to the person at the
// keyboard. Known taxonomy errors are shown with any context they were
// wrapped in; anything else is treated as a storage failure.
func Operator(err error) string {
	if err == nil {
		return ""
	}
	var (
		v *ValidationError
		c *ConflictError
		n *NotFoundError
		w *DuplicateCodeWarning
	)
	switch {
	case errors.As(err, &v), errors.As(err, &c), errors.As(err, &n):
		return "Error: " + err.Error()
	case errors.As(err, &w):
		return "Warning: " + err.Error()
	default:
		return "Error: storage failure: " + err.Error()
	}
}
