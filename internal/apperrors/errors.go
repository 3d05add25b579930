// Package apperrors defines the typed failures returned by the catalog,
// ledger and inventory services. Every public operation returns either a
// success value or one of these; nothing is caught and re-presented as
// success. The structs carry enough context for a caller to render an
// actionable message without a second round-trip.
package apperrors

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports bad input shape or range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an id or code that does not resolve.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Ref)
}

// DuplicateCodeError reports a unique code collision on create.
type DuplicateCodeError struct {
	Entity string
	Code   string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("%s code %q already exists", e.Entity, e.Code)
}

// ImmutableFieldError reports a patch that tries to change a field that
// is fixed after creation.
type ImmutableFieldError struct {
	Field string
}

func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("field %q is immutable after creation", e.Field)
}

// UnitRequiredError rejects a stock movement on a product whose unit of
// measure does not resolve. Viewing such a product is fine; moving stock
// for it is not.
type UnitRequiredError struct {
	ProductID uuid.UUID
}

func (e *UnitRequiredError) Error() string {
	return fmt.Sprintf("product %s has no resolvable unit of measure", e.ProductID)
}

// WarehouseInactiveError rejects stock-in against a deactivated
// warehouse. Historical balances stay queryable and stock-out remains
// allowed.
type WarehouseInactiveError struct {
	WarehouseID uuid.UUID
}

func (e *WarehouseInactiveError) Error() string {
	return fmt.Sprintf("warehouse %s is inactive and cannot receive stock", e.WarehouseID)
}

// InsufficientStockError rejects a stock-out that would drive the
// (product, warehouse) balance below zero. Available carries the balance
// computed inside the ledger transaction.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s in warehouse %s: requested %d, only %d available",
		e.ProductID, e.WarehouseID, e.Requested, e.Available)
}

// HasDependentsError refuses a delete that would orphan dependent rows.
type HasDependentsError struct {
	Entity     string
	ID         uuid.UUID
	Dependents string
	Count      int
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("%s %s has %d dependent %s", e.Entity, e.ID, e.Count, e.Dependents)
}

// BusyError reports a bounded lock-wait timeout on the per-key ledger
// write lock. The command produced no ledger row and may be retried.
type BusyError struct {
	Resource string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("resource %s is busy, retry later", e.Resource)
}
