package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	Code              string          `json:"code" db:"code"`
	Name              string          `json:"name" db:"name"`
	Description       *string         `json:"description" db:"description"`
	CategoryID        *uuid.UUID      `json:"category_id" db:"category_id"`
	UnitOfMeasureID   *uuid.UUID      `json:"unit_of_measure_id" db:"unit_of_measure_id"`
	UnitOfMeasureName *string         `json:"unit_of_measure_name" db:"unit_of_measure_name"`
	DefaultPrice      decimal.Decimal `json:"default_price" db:"default_price"`
	MinQuantity       *int            `json:"min_quantity" db:"min_quantity"`
	IsActive          bool            `json:"is_active" db:"is_active"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// UnitRef builds the tagged unit reference used by the resolver.
// The id reference always wins over the legacy name field.
func (p *Product) UnitRef() UnitRef {
	if p.UnitOfMeasureID != nil {
		return UnitByID(*p.UnitOfMeasureID)
	}
	if p.UnitOfMeasureName != nil && *p.UnitOfMeasureName != "" {
		return UnitByName(*p.UnitOfMeasureName)
	}
	return NoUnit()
}

// ReorderThreshold returns the low-stock threshold for this product,
// falling back to the system default when min_quantity is unset.
func (p *Product) ReorderThreshold(fallback int) int {
	if p.MinQuantity != nil {
		return *p.MinQuantity
	}
	return fallback
}

// ProductPatch carries a partial product update. Nil fields are left
// unchanged. Code is present only so a differing value can be rejected:
// the product code is immutable after creation.
type ProductPatch struct {
	Code              *string          `json:"code,omitempty"`
	Name              *string          `json:"name,omitempty"`
	Description       *string          `json:"description,omitempty"`
	CategoryID        *uuid.UUID       `json:"category_id,omitempty"`
	UnitOfMeasureID   *uuid.UUID       `json:"unit_of_measure_id,omitempty"`
	UnitOfMeasureName *string          `json:"unit_of_measure_name,omitempty"`
	DefaultPrice      *decimal.Decimal `json:"default_price,omitempty"`
	MinQuantity       *int             `json:"min_quantity,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
}

// ProvisionRequest is the find-or-create contract used by callers that
// need a product before its unit or category exists. Running it twice
// with the same names must reuse existing rows, never duplicate them.
type ProvisionRequest struct {
	Code         string          `json:"code" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	UnitName     string          `json:"unit_name" validate:"required"`
	CategoryName string          `json:"category_name,omitempty"`
	DefaultPrice decimal.Decimal `json:"default_price,omitempty"`
}

// ProductDetail is the read model returned by the inventory facade.
type ProductDetail struct {
	Product      *Product         `json:"product"`
	Unit         *ResolvedUnit    `json:"unit,omitempty"`
	UnitSymbol   string           `json:"unit_symbol"`
	TotalStock   int              `json:"total_stock"`
	TotalValue   decimal.Decimal  `json:"total_value"`
	PerWarehouse []WarehouseStock `json:"per_warehouse"`
}
