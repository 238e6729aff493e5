package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors for errors.Is matching against the typed errors below.
var (
	ErrValidation        = errors.New("validation failed")
	ErrPeriodClosed      = errors.New("period closed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("not found")
)

// ValidationError describes malformed input rejected before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid is shorthand for a *ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// PeriodClosedError reports a posting dated inside a closed period.
type PeriodClosedError struct {
	PeriodID string
	Name     string
	Date     time.Time
}

func (e *PeriodClosedError) Error() string {
	return fmt.Sprintf("period %q is closed for %s", e.Name, e.Date.Format("2006-01-02"))
}

func (e *PeriodClosedError) Is(target error) bool { return target == ErrPeriodClosed }

// InsufficientStockError reports an outbound movement that cannot be covered.
type InsufficientStockError struct {
	SKU       string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %s, available %s", e.SKU, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// NotFoundError reports a reference to a record that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
