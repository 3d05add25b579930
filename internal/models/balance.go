package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel classifies a product's aggregate balance against its
// reorder threshold. Zero stock is its own severity and is never mixed
// into the low-stock bucket.
type StockLevel string

const (
	StockLevelOut StockLevel = "out_of_stock"
	StockLevelLow StockLevel = "low_stock"
	StockLevelIn  StockLevel = "in_stock"
)

// WarehouseStock is one line of a per-warehouse balance breakdown.
type WarehouseStock struct {
	WarehouseID   uuid.UUID `json:"warehouse_id" db:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name" db:"warehouse_name"`
	Quantity      int       `json:"quantity" db:"quantity"`
}

// LowStockItem is one row of the low-stock (or out-of-stock) report.
type LowStockItem struct {
	Product      *Product         `json:"product"`
	Balance      int              `json:"balance"`
	Threshold    int              `json:"threshold"`
	PerWarehouse []WarehouseStock `json:"per_warehouse,omitempty"`
}

// WarehouseSummary aggregates the positive balances held in one
// warehouse. TotalValue sums balance x default price per product.
type WarehouseSummary struct {
	WarehouseID  uuid.UUID       `json:"warehouse_id"`
	ProductCount int             `json:"product_count"`
	TotalUnits   int             `json:"total_units"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// Availability is the read-only stock probe result. It is advisory: the
// authoritative insufficient-stock check happens inside the ledger
// transaction when the movement is recorded.
type Availability struct {
	Available         bool `json:"available"`
	Requested         int  `json:"requested"`
	AvailableQuantity int  `json:"available_quantity"`
}
