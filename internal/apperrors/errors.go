// Package apperrors defines the error taxonomy surfaced by the inventory
// and reservation services. Callers branch on these with errors.As; anything
// else is an infrastructure failure.
package apperrors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports bad input shape or range. Not retryable.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown entity id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func NotFound(entity string, id uuid.UUID) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// InsufficientStockError reports a business-rule rejection: the pair cannot
// cover the requested quantity. Callers may retry once stock arrives.
type InsufficientStockError struct {
	BranchID  uuid.UUID
	ItemID    uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s:%s: requested %d, available %d",
		e.BranchID, e.ItemID, e.Requested, e.Available)
}

// InvalidStateError reports an illegal reservation transition.
type InvalidStateError struct {
	Op     string
	Status string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a reservation in status %q", e.Op, e.Status)
}

// ConflictError reports a concurrent uniqueness violation that could not be
// recovered by re-reading.
type ConflictError struct {
	Constraint string
	Detail     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Constraint, e.Detail)
}

func IsValidation(err error) bool {
	var t *ValidationError
	return errors.As(err, &t)
}

func IsNotFound(err error) bool {
	var t *NotFoundError
	return errors.As(err, &t)
}

func IsInsufficientStock(err error) bool {
	var t *InsufficientStockError
	return errors.As(err, &t)
}

func IsInvalidState(err error) bool {
	var t *InvalidStateError
	return errors.As(err, &t)
}

func IsConflict(err error) bool {
	var t *ConflictError
	return errors.As(err, &t)
}
