package handlers

import (
	"net/http"

	"stockpilot/internal/models"
	"stockpilot/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UnitHandlers handles unit-of-measure HTTP requests
type UnitHandlers struct {
	catalogService services.CatalogService
}

func NewUnitHandlers(catalogService services.CatalogService) *UnitHandlers {
	return &UnitHandlers{catalogService: catalogService}
}

func (h *UnitHandlers) ListUnits(c echo.Context) error {
	ctx := c.Request().Context()

	units, err := h.catalogService.ListUnits(ctx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"units": units,
	})
}

// CreateUnitRequest represents the unit creation payload
type CreateUnitRequest struct {
	Name   string  `json:"name" validate:"required"`
	Symbol *string `json:"symbol"`
}

func (h *UnitHandlers) CreateUnit(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateUnitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	unit := &models.UnitOfMeasure{
		Name:   req.Name,
		Symbol: req.Symbol,
	}
	if err := h.catalogService.CreateUnit(ctx, unit); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, unit)
}

func (h *UnitHandlers) GetUnit(c echo.Context) error {
	ctx := c.Request().Context()

	unitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid unit ID format")
	}

	unit, err := h.catalogService.GetUnit(ctx, unitID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, unit)
}

// UpdateUnitRequest represents the unit update payload
type UpdateUnitRequest struct {
	Name   *string `json:"name"`
	Symbol *string `json:"symbol"`
}

func (h *UnitHandlers) UpdateUnit(c echo.Context) error {
	ctx := c.Request().Context()

	unitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid unit ID format")
	}

	var req UpdateUnitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	unit, err := h.catalogService.UpdateUnit(ctx, unitID, req.Name, req.Symbol)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, unit)
}

func (h *UnitHandlers) DeleteUnit(c echo.Context) error {
	ctx := c.Request().Context()

	unitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid unit ID format")
	}

	if err := h.catalogService.DeleteUnit(ctx, unitID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Unit deleted successfully",
	})
}
