package handlers

import (
	"net/http"

	"stockpilot/internal/models"
	"stockpilot/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles category HTTP requests
type CategoryHandlers struct {
	catalogService services.CatalogService
}

func NewCategoryHandlers(catalogService services.CatalogService) *CategoryHandlers {
	return &CategoryHandlers{catalogService: catalogService}
}

// ListCategoriesRequest represents query parameters for listing categories
type ListCategoriesRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListCategoriesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if req.Limit <= 0 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	categories, err := h.catalogService.ListCategories(ctx, req.Limit, req.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.catalogService.CreateCategory(ctx, category); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID format")
	}

	category, err := h.catalogService.GetCategory(ctx, categoryID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, category)
}

// UpdateCategoryRequest represents the category update payload
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID format")
	}

	var req UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	category, err := h.catalogService.UpdateCategory(ctx, categoryID, req.Name, req.Description)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category. With ?cascade=true it also removes
// the products under it, unless any of them has ledger history.
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID format")
	}
	cascade := c.QueryParam("cascade") == "true"

	if err := h.catalogService.DeleteCategory(ctx, categoryID, cascade); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Category deleted successfully",
	})
}
