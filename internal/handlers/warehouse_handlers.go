package handlers

import (
	"net/http"

	"stockpilot/internal/models"
	"stockpilot/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// WarehouseHandlers handles warehouse HTTP requests
type WarehouseHandlers struct {
	catalogService services.CatalogService
	balanceService services.BalanceService
}

func NewWarehouseHandlers(catalogService services.CatalogService, balanceService services.BalanceService) *WarehouseHandlers {
	return &WarehouseHandlers{
		catalogService: catalogService,
		balanceService: balanceService,
	}
}

// ListWarehousesRequest represents query parameters for listing warehouses
type ListWarehousesRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *WarehouseHandlers) ListWarehouses(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListWarehousesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if req.Limit <= 0 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	warehouses, err := h.catalogService.ListWarehouses(ctx, req.Limit, req.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"warehouses": warehouses,
	})
}

// CreateWarehouseRequest represents the warehouse creation payload
type CreateWarehouseRequest struct {
	Code    string  `json:"code" validate:"required"`
	Name    string  `json:"name" validate:"required"`
	Address *string `json:"address"`
}

func (h *WarehouseHandlers) CreateWarehouse(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateWarehouseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	warehouse := &models.Warehouse{
		Code:     req.Code,
		Name:     req.Name,
		Address:  req.Address,
		IsActive: true,
	}
	if err := h.catalogService.CreateWarehouse(ctx, warehouse); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, warehouse)
}

func (h *WarehouseHandlers) GetWarehouse(c echo.Context) error {
	ctx := c.Request().Context()

	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid warehouse ID format")
	}

	warehouse, err := h.catalogService.GetWarehouse(ctx, warehouseID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, warehouse)
}

func (h *WarehouseHandlers) UpdateWarehouse(c echo.Context) error {
	ctx := c.Request().Context()

	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid warehouse ID format")
	}

	var patch models.WarehousePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	warehouse, err := h.catalogService.UpdateWarehouse(ctx, warehouseID, &patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, warehouse)
}

// DeleteWarehouse removes a warehouse. With ?cascade=true its movement
// history is deleted with it in the same transaction.
func (h *WarehouseHandlers) DeleteWarehouse(c echo.Context) error {
	ctx := c.Request().Context()

	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid warehouse ID format")
	}
	cascade := c.QueryParam("cascade") == "true"

	if err := h.catalogService.DeleteWarehouse(ctx, warehouseID, cascade); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Warehouse deleted successfully",
	})
}

// GetWarehouseSummary returns stock totals for one warehouse: distinct
// products in stock, total units and total value at default price.
func (h *WarehouseHandlers) GetWarehouseSummary(c echo.Context) error {
	ctx := c.Request().Context()

	warehouseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid warehouse ID format")
	}

	if _, err := h.catalogService.GetWarehouse(ctx, warehouseID); err != nil {
		return httpError(err)
	}
	summary, err := h.balanceService.WarehouseSummary(ctx, warehouseID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}
