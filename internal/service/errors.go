// Package service implements the maintenance assignment and scheduling
// business logic on top of the store interfaces.
package service

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Kind string // "task", "technician", "assignment", "schedule", "equipment"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id %s", e.Kind, e.ID)
}

// ValidationError reports malformed input. No side effects are committed
// before it is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// RuleError reports a business-rule violation: capacity exceeded, scheduling
// conflict, wrong-state transition, wrong staff role. Distinct from
// NotFoundError and ValidationError so callers can branch on it.
type RuleError struct {
	Msg string
}

func (e *RuleError) Error() string {
	return e.Msg
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRuleViolation reports whether err is a RuleError.
func IsRuleViolation(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

func invalidf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func rulef(format string, args ...interface{}) error {
	return &RuleError{Msg: fmt.Sprintf(format, args...)}
}
