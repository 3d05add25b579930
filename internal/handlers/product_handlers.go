package handlers

import (
	"net/http"

	"stockpilot/internal/models"
	"stockpilot/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ProductHandlers handles product catalog HTTP requests
type ProductHandlers struct {
	catalogService   services.CatalogService
	inventoryService services.InventoryService
}

func NewProductHandlers(catalogService services.CatalogService, inventoryService services.InventoryService) *ProductHandlers {
	return &ProductHandlers{
		catalogService:   catalogService,
		inventoryService: inventoryService,
	}
}

// ListProductsRequest represents query parameters for listing products
type ListProductsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListProductsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Limit > 200 {
		req.Limit = 200
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	products, err := h.catalogService.ListProducts(ctx, req.Limit, req.Offset)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    req.Limit,
		"offset":   req.Offset,
	})
}

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Code              string           `json:"code" validate:"required"`
	Name              string           `json:"name" validate:"required"`
	Description       *string          `json:"description"`
	CategoryID        *uuid.UUID       `json:"category_id"`
	UnitOfMeasureID   *uuid.UUID       `json:"unit_of_measure_id"`
	UnitOfMeasureName *string          `json:"unit_of_measure_name"`
	DefaultPrice      *decimal.Decimal `json:"default_price"`
	MinQuantity       *int             `json:"min_quantity"`
}

func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	product := &models.Product{
		Code:              req.Code,
		Name:              req.Name,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		UnitOfMeasureID:   req.UnitOfMeasureID,
		UnitOfMeasureName: req.UnitOfMeasureName,
		MinQuantity:       req.MinQuantity,
		IsActive:          true,
	}
	if req.DefaultPrice != nil {
		product.DefaultPrice = *req.DefaultPrice
	}

	if err := h.catalogService.CreateProduct(ctx, product); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandlers) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID format")
	}

	product, err := h.catalogService.GetProduct(ctx, productID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID format")
	}

	var patch models.ProductPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	product, err := h.catalogService.UpdateProduct(ctx, productID, &patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID format")
	}

	if err := h.catalogService.DeleteProduct(ctx, productID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Product deleted successfully",
	})
}

// GetProductDetail returns the product with its resolved unit, stock
// totals and per-warehouse breakdown.
func (h *ProductHandlers) GetProductDetail(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID format")
	}

	detail, err := h.inventoryService.GetProductDetail(ctx, productID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

// ListMovementsRequest represents query parameters for movement history
type ListMovementsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *ProductHandlers) GetProductMovements(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID format")
	}

	var req ListMovementsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Limit > 500 {
		req.Limit = 500
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	movements, err := h.inventoryService.GetMovementHistory(ctx, productID, req.Limit, req.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"movements": movements,
		"limit":     req.Limit,
		"offset":    req.Offset,
	})
}

// ProvisionProduct handles the idempotent find-or-create flow for
// manual entries without a catalog selection.
func (h *ProductHandlers) ProvisionProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.ProvisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	product, err := h.catalogService.AutoProvision(ctx, &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, product)
}
