package store

import (
	"errors"
	"fmt"

	"opensite/api/internal/model"
)

// NotFoundError is returned when a referenced entity or actor does not exist.
// Always fatal to the current operation.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// PermissionDeniedError is returned when the actor's role lacks the required
// capability. The operation fails before any state mutation and before any
// audit entry is written.
type PermissionDeniedError struct {
	Permission model.Permission
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: missing %s", e.Permission)
}

// TransitionError is returned when a status change is not allowed by the
// entity's state machine.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot transition from %s to %s", e.Entity, e.From, e.To)
}

// ValidationError is returned when an operation's input is malformed.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsPermissionDenied reports whether err is a PermissionDeniedError.
func IsPermissionDenied(err error) bool {
	var pd *PermissionDeniedError
	return errors.As(err, &pd)
}

// IsInvalidTransition reports whether err is a TransitionError.
func IsInvalidTransition(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
