package handlers

import (
	"net/http"

	"stockpilot/internal/models"
	"stockpilot/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// StockHandlers handles stock movement and balance HTTP requests
type StockHandlers struct {
	inventoryService services.InventoryService
	balanceService   services.BalanceService
}

func NewStockHandlers(inventoryService services.InventoryService, balanceService services.BalanceService) *StockHandlers {
	return &StockHandlers{
		inventoryService: inventoryService,
		balanceService:   balanceService,
	}
}

// StockInRequest represents a stock-in payload
type StockInRequest struct {
	ProductID   uuid.UUID        `json:"product_id" validate:"required"`
	WarehouseID uuid.UUID        `json:"warehouse_id" validate:"required"`
	Quantity    int              `json:"quantity" validate:"required"`
	UnitCost    *decimal.Decimal `json:"unit_cost"`
	SourceType  string           `json:"source_type"`
	Notes       *string          `json:"notes"`
}

func (h *StockHandlers) StockIn(c echo.Context) error {
	ctx := c.Request().Context()

	var req StockInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	movementID, err := h.inventoryService.StockIn(ctx, &models.StockInCommand{
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		Quantity:    req.Quantity,
		UnitCost:    req.UnitCost,
		SourceType:  req.SourceType,
		Notes:       req.Notes,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"movement_id": movementID,
		"message":     "Stock recorded successfully",
	})
}

// StockOutRequest represents a stock-out payload
type StockOutRequest struct {
	ProductID   uuid.UUID `json:"product_id" validate:"required"`
	WarehouseID uuid.UUID `json:"warehouse_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required"`
	SourceType  string    `json:"source_type"`
	Notes       *string   `json:"notes"`
}

func (h *StockHandlers) StockOut(c echo.Context) error {
	ctx := c.Request().Context()

	var req StockOutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	movementID, err := h.inventoryService.StockOut(ctx, &models.StockOutCommand{
		ProductID:   req.ProductID,
		WarehouseID: req.WarehouseID,
		Quantity:    req.Quantity,
		SourceType:  req.SourceType,
		Notes:       req.Notes,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"movement_id": movementID,
		"message":     "Stock withdrawn successfully",
	})
}

// CheckAvailabilityRequest represents an availability probe
type CheckAvailabilityRequest struct {
	ProductID   uuid.UUID `query:"product_id" validate:"required"`
	WarehouseID uuid.UUID `query:"warehouse_id" validate:"required"`
	Quantity    int       `query:"quantity" validate:"required"`
}

func (h *StockHandlers) CheckAvailability(c echo.Context) error {
	ctx := c.Request().Context()

	var req CheckAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if req.ProductID == uuid.Nil || req.WarehouseID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id and warehouse_id are required")
	}

	availability, err := h.inventoryService.CheckAvailability(ctx, req.ProductID, req.WarehouseID, req.Quantity)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, availability)
}

// GetBalance returns the on-hand quantity for a product, either per
// warehouse (?warehouse_id=...) or aggregated across all warehouses.
func (h *StockHandlers) GetBalance(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID format")
	}

	var warehouseID *uuid.UUID
	if raw := c.QueryParam("warehouse_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid warehouse ID format")
		}
		warehouseID = &parsed
	}

	balance, err := h.balanceService.BalanceOf(ctx, productID, warehouseID)
	if err != nil {
		return httpError(err)
	}
	resp := map[string]interface{}{
		"product_id": productID,
		"balance":    balance,
	}
	if warehouseID != nil {
		resp["warehouse_id"] = *warehouseID
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *StockHandlers) GetLowStock(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.inventoryService.GetLowStock(ctx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

func (h *StockHandlers) GetOutOfStock(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.inventoryService.GetOutOfStock(ctx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}
