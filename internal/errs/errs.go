// Package errs defines the domain error taxonomy shared by the core
// engines and the services. Every kind is a deterministic function of the
// input state; none is retryable server-side. The HTTP layer translates
// them into response codes.
package errs

import (
	"errors"
	"fmt"
)

// NotFoundError reports a referenced entity that is missing or soft-deleted.
// Surfaced as a 404.
type NotFoundError struct {
	EntityType string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.EntityType)
}

// ValidationError reports malformed or cross-container-inconsistent input.
// Surfaced as a 400.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ConflictError reports stale client state, typically an inverted neighbor
// ordering. The client must refetch and retry. Surfaced as a 409.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	if e.Reason == "" {
		return "conflicting concurrent update"
	}
	return e.Reason
}

// ForbiddenError reports an absent capability. Surfaced as a 403.
type ForbiddenError struct {
	Action string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("action %q is not permitted", e.Action)
}

func NotFound(entityType string) error {
	return &NotFoundError{EntityType: entityType}
}

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

func Forbidden(action string) error {
	return &ForbiddenError{Action: action}
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsForbidden(err error) bool {
	var e *ForbiddenError
	return errors.As(err, &e)
}
