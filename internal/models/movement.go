package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementDirection string

const (
	DirectionIn  MovementDirection = "IN"
	DirectionOut MovementDirection = "OUT"
)

// StockMovement is a single ledger entry. Rows are append-only and
// immutable once written: corrections are made by appending a
// compensating movement, never by editing history.
type StockMovement struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	ProductID   uuid.UUID         `json:"product_id" db:"product_id"`
	WarehouseID uuid.UUID         `json:"warehouse_id" db:"warehouse_id"`
	Direction   MovementDirection `json:"direction" db:"direction"`
	Quantity    int               `json:"quantity" db:"quantity"`
	UnitID      uuid.UUID         `json:"unit_id" db:"unit_id"`
	UnitCost    *decimal.Decimal  `json:"unit_cost,omitempty" db:"unit_cost"`
	SourceType  string            `json:"source_type" db:"source_type"`
	Notes       *string           `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
}

// StockInCommand receives goods into a warehouse.
type StockInCommand struct {
	ProductID   uuid.UUID        `json:"product_id" validate:"required"`
	WarehouseID uuid.UUID        `json:"warehouse_id" validate:"required"`
	Quantity    int              `json:"quantity" validate:"required,min=1"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	SourceType  string           `json:"source_type,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

// StockOutCommand issues goods from a warehouse. There is no unit cost
// on the way out; costing is out of scope.
type StockOutCommand struct {
	ProductID   uuid.UUID `json:"product_id" validate:"required"`
	WarehouseID uuid.UUID `json:"warehouse_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,min=1"`
	SourceType  string    `json:"source_type,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
}

// DefaultSourceType tags movements recorded without an explicit
// provenance.
const DefaultSourceType = "manual"
