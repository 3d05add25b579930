package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"stockpilot/internal/apperrors"
	"stockpilot/internal/caching"
	"stockpilot/internal/models"
	"stockpilot/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CatalogService owns the reference data: products, categories,
// warehouses and units of measure. Stock quantities live in the ledger,
// not here.
type CatalogService interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch *models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, error)

	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name, description *string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID, cascade bool) error
	ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error)

	CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) error
	GetWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	UpdateWarehouse(ctx context.Context, id uuid.UUID, patch *models.WarehousePatch) (*models.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id uuid.UUID, cascade bool) error
	ListWarehouses(ctx context.Context, limit, offset int) ([]*models.Warehouse, error)

	CreateUnit(ctx context.Context, unit *models.UnitOfMeasure) error
	GetUnit(ctx context.Context, id uuid.UUID) (*models.UnitOfMeasure, error)
	UpdateUnit(ctx context.Context, id uuid.UUID, name, symbol *string) (*models.UnitOfMeasure, error)
	DeleteUnit(ctx context.Context, id uuid.UUID) error
	ListUnits(ctx context.Context) ([]*models.UnitOfMeasure, error)

	AutoProvision(ctx context.Context, req *models.ProvisionRequest) (*models.Product, error)
}

type catalogService struct {
	productRepo   repositories.ProductRepository
	categoryRepo  repositories.CategoryRepository
	warehouseRepo repositories.WarehouseRepository
	unitRepo      repositories.UnitRepository
	movementRepo  repositories.MovementRepository
	cacheService  caching.CacheService
}

func NewCatalogService(
	productRepo repositories.ProductRepository,
	categoryRepo repositories.CategoryRepository,
	warehouseRepo repositories.WarehouseRepository,
	unitRepo repositories.UnitRepository,
	movementRepo repositories.MovementRepository,
	cacheService caching.CacheService,
) CatalogService {
	return &catalogService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		warehouseRepo: warehouseRepo,
		unitRepo:      unitRepo,
		movementRepo:  movementRepo,
		cacheService:  cacheService,
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	if strings.TrimSpace(product.Code) == "" {
		return &apperrors.ValidationError{Field: "code", Reason: "is required"}
	}
	if strings.TrimSpace(product.Name) == "" {
		return &apperrors.ValidationError{Field: "name", Reason: "is required"}
	}
	if product.DefaultPrice.IsNegative() {
		return &apperrors.ValidationError{Field: "default_price", Reason: "cannot be negative"}
	}
	if product.MinQuantity != nil && *product.MinQuantity < 0 {
		return &apperrors.ValidationError{Field: "min_quantity", Reason: "cannot be negative"}
	}

	if _, err := s.productRepo.GetByCode(ctx, product.Code); err == nil {
		return &apperrors.DuplicateCodeError{Entity: "product", Code: product.Code}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if product.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *product.CategoryID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &apperrors.NotFoundError{Entity: "category", Ref: product.CategoryID.String()}
			}
			return err
		}
	}
	// A unit id is recommended but not required at creation: products may
	// be provisioned before their unit exists.
	if product.UnitOfMeasureID != nil {
		if _, err := s.unitRepo.GetByID(ctx, *product.UnitOfMeasureID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &apperrors.NotFoundError{Entity: "unit_of_measure", Ref: product.UnitOfMeasureID.String()}
			}
			return err
		}
	}

	product.ID = uuid.New()
	return s.productRepo.Create(ctx, product)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if cached, err := s.cacheService.GetProduct(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("cache error for product %s: %v", id.String(), err)
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Entity: "product", Ref: id.String()}
		}
		return nil, err
	}

	if cacheErr := s.cacheService.SetProduct(ctx, product, 15*time.Minute); cacheErr != nil {
		log.Printf("failed to cache product %s: %v", id.String(), cacheErr)
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, patch *models.ProductPatch) (*models.Product, error) {
	existing, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Entity: "product", Ref: id.String()}
		}
		return nil, err
	}

	// The code is immutable: a patch carrying a different code is
	// rejected, never silently ignored.
	if patch.Code != nil && *patch.Code != existing.Code {
		return nil, &apperrors.ImmutableFieldError{Field: "code"}
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, &apperrors.ValidationError{Field: "name", Reason: "cannot be empty"}
		}
		existing.Name = *patch.Name
	}
	if patch.Description != nil {
		existing.Description = patch.Description
	}
	if patch.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *patch.CategoryID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &apperrors.NotFoundError{Entity: "category", Ref: patch.CategoryID.String()}
			}
			return nil, err
		}
		existing.CategoryID = patch.CategoryID
	}
	if patch.UnitOfMeasureID != nil {
		if _, err := s.unitRepo.GetByID(ctx, *patch.UnitOfMeasureID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &apperrors.NotFoundError{Entity: "unit_of_measure", Ref: patch.UnitOfMeasureID.String()}
			}
			return nil, err
		}
		existing.UnitOfMeasureID = patch.UnitOfMeasureID
	}
	if patch.UnitOfMeasureName != nil {
		existing.UnitOfMeasureName = patch.UnitOfMeasureName
	}
	if patch.DefaultPrice != nil {
		if patch.DefaultPrice.IsNegative() {
			return nil, &apperrors.ValidationError{Field: "default_price", Reason: "cannot be negative"}
		}
		existing.DefaultPrice = *patch.DefaultPrice
	}
	if patch.MinQuantity != nil {
		if *patch.MinQuantity < 0 {
			return nil, &apperrors.ValidationError{Field: "min_quantity", Reason: "cannot be negative"}
		}
		existing.MinQuantity = patch.MinQuantity
	}
	if patch.IsActive != nil {
		existing.IsActive = *patch.IsActive
	}

	if err := s.productRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	if cacheErr := s.cacheService.DeleteProduct(ctx, id); cacheErr != nil {
		log.Printf("failed to invalidate cache for product %s: %v", id.String(), cacheErr)
	}
	return existing, nil
}

// DeleteProduct refuses while ledger history exists: movements must
// never point at a deleted product.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &apperrors.NotFoundError{Entity: "product", Ref: id.String()}
		}
		return err
	}

	count, err := s.movementRepo.CountByProduct(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &apperrors.HasDependentsError{Entity: "product", ID: id, Dependents: "stock movements", Count: count}
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	if cacheErr := s.cacheService.DeleteProduct(ctx, id); cacheErr != nil {
		log.Printf("failed to invalidate cache for product %s: %v", id.String(), cacheErr)
	}
	return nil
}

func (s *catalogService) ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	return s.productRepo.List(ctx, limit, offset)
}

// CreateCategory rejects a taken name up front. The repository insert is
// ON CONFLICT DO NOTHING for the provisioning path, so skipping this
// check would turn a collision into a silent no-op with a 201.
func (s *catalogService) CreateCategory(ctx context.Context, category *models.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return &apperrors.ValidationError{Field: "name", Reason: "is required"}
	}

	if _, err := s.categoryRepo.GetByName(ctx, category.Name); err == nil {
		return &apperrors.DuplicateCodeError{Entity: "category", Code: category.Name}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	category.ID = uuid.New()
	return s.categoryRepo.Create(ctx, category)
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Entity: "category", Ref: id.String()}
		}
		return nil, err
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name, description *string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Entity: "category", Ref: id.String()}
		}
		return nil, err
	}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, &apperrors.ValidationError{Field: "name", Reason: "is required"}
		}
		category.Name = *name
	}
	if description != nil {
		category.Description = description
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory checks dependents first. Without cascade it refuses
// while products reference the category; with cascade the repository
// deletes dependents and parent in one transaction, aborting entirely if
// any dependent product has ledger history.
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID, cascade bool) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &apperrors.NotFoundError{Entity: "category", Ref: id.String()}
		}
		return err
	}

	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return s.categoryRepo.Delete(ctx, id)
	}
	if !cascade {
		return &apperrors.HasDependentsError{Entity: "category", ID: id, Dependents: "products", Count: count}
	}
	return s.categoryRepo.DeleteCascade(ctx, id)
}

func (s *catalogService) ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx, limit, offset)
}

func (s *catalogService) CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) error {
	if strings.TrimSpace(warehouse.Code) == "" {
		return &apperrors.ValidationError{Field: "code", Reason: "is required"}
	}
	if strings.TrimSpace(warehouse.Name) == "" {
		return &apperrors.ValidationError{Field: "name", Reason: "is required"}
	}

	if _, err := s.warehouseRepo.GetByCode(ctx, warehouse.Code); err == nil {
		return &apperrors.DuplicateCodeError{Entity: "warehouse", Code: warehouse.Code}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	warehouse.ID = uuid.New()
	return s.warehouseRepo.Create(ctx, warehouse)
}

func (s *catalogService) GetWarehouse(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	warehouse, err := s.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Entity: "warehouse", Ref: id.String()}
		}
		return nil, err
	}
	return warehouse, nil
}

func (s *catalogService) UpdateWarehouse(ctx context.Context, id uuid.UUID, patch *models.WarehousePatch) (*models.Warehouse, error) {
	existing, err := s.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Entity: "warehouse", Ref: id.String()}
		}
		return nil, err
	}

	if patch.Code != nil && *patch.Code != existing.Code {
		return nil, &apperrors.ImmutableFieldError{Field: "code"}
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, &apperrors.ValidationError{Field: "name", Reason: "cannot be empty"}
		}
		existing.Name = *patch.Name
	}
	if patch.Address != nil {
		existing.Address = patch.Address
	}
	if patch.IsActive != nil {
		existing.IsActive = *patch.IsActive
	}

	if err := s.warehouseRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteWarehouse refuses while movements reference the warehouse unless
// the caller explicitly confirms the cascade, in which case movements
// and warehouse go in one transaction.
func (s *catalogService) DeleteWarehouse(ctx context.Context, id uuid.UUID, cascade bool) error {
	if _, err := s.warehouseRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &apperrors.NotFoundError{Entity: "warehouse", Ref: id.String()}
		}
		return err
	}

	count, err := s.movementRepo.CountByWarehouse(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return s.warehouseRepo.Delete(ctx, id)
	}
	if !cascade {
		return &apperrors.HasDependentsError{Entity: "warehouse", ID: id, Dependents: "stock movements", Count: count}
	}
	return s.warehouseRepo.DeleteCascade(ctx, id)
}

func (s *catalogService) ListWarehouses(ctx context.Context, limit, offset int) ([]*models.Warehouse, error) {
	return s.warehouseRepo.List(ctx, limit, offset)
}

// CreateUnit rejects a taken name up front, mirroring CreateCategory.
func (s *catalogService) CreateUnit(ctx context.Context, unit *models.UnitOfMeasure) error {
	if strings.TrimSpace(unit.Name) == "" {
		return &apperrors.ValidationError{Field: "name", Reason: "is required"}
	}

	if _, err := s.unitRepo.GetByName(ctx, unit.Name); err == nil {
		return &apperrors.DuplicateCodeError{Entity: "unit_of_measure", Code: unit.Name}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	unit.ID = uuid.New()
	return s.unitRepo.Create(ctx, unit)
}

func (s *catalogService) GetUnit(ctx context.Context, id uuid.UUID) (*models.UnitOfMeasure, error) {
	unit, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Entity: "unit_of_measure", Ref: id.String()}
		}
		return nil, err
	}
	return unit, nil
}

func (s *catalogService) UpdateUnit(ctx context.Context, id uuid.UUID, name, symbol *string) (*models.UnitOfMeasure, error) {
	unit, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Entity: "unit_of_measure", Ref: id.String()}
		}
		return nil, err
	}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, &apperrors.ValidationError{Field: "name", Reason: "is required"}
		}
		unit.Name = *name
	}
	if symbol != nil {
		unit.Symbol = symbol
	}
	if err := s.unitRepo.Update(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *catalogService) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	count, err := s.productRepo.CountByUnit(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &apperrors.HasDependentsError{Entity: "unit_of_measure", ID: id, Dependents: "products", Count: count}
	}
	return s.unitRepo.Delete(ctx, id)
}

func (s *catalogService) ListUnits(ctx context.Context) ([]*models.UnitOfMeasure, error) {
	return s.unitRepo.List(ctx)
}

// AutoProvision is the find-or-create flow for manual entries: unit by
// name, category by name (default "General"), then the product by code.
// Running it twice with the same names reuses existing rows.
func (s *catalogService) AutoProvision(ctx context.Context, req *models.ProvisionRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, &apperrors.ValidationError{Field: "code", Reason: "is required"}
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, &apperrors.ValidationError{Field: "name", Reason: "is required"}
	}
	if strings.TrimSpace(req.UnitName) == "" {
		return nil, &apperrors.ValidationError{Field: "unit_name", Reason: "is required"}
	}

	unit, err := s.findOrCreateUnit(ctx, req.UnitName)
	if err != nil {
		return nil, fmt.Errorf("provision unit: %w", err)
	}

	categoryName := req.CategoryName
	if strings.TrimSpace(categoryName) == "" {
		categoryName = models.DefaultCategoryName
	}
	category, err := s.findOrCreateCategory(ctx, categoryName)
	if err != nil {
		return nil, fmt.Errorf("provision category: %w", err)
	}

	existing, err := s.productRepo.GetByCode(ctx, req.Code)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	product := &models.Product{
		ID:              uuid.New(),
		Code:            req.Code,
		Name:            req.Name,
		CategoryID:      &category.ID,
		UnitOfMeasureID: &unit.ID,
		DefaultPrice:    req.DefaultPrice,
		IsActive:        true,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("provision product: %w", err)
	}
	return product, nil
}

func (s *catalogService) findOrCreateUnit(ctx context.Context, name string) (*models.UnitOfMeasure, error) {
	unit, err := s.unitRepo.GetByName(ctx, name)
	if err == nil {
		return unit, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	// Create is ON CONFLICT DO NOTHING, so a concurrent insert with the
	// same name is harmless; re-read to get the winning row.
	if err := s.unitRepo.Create(ctx, &models.UnitOfMeasure{ID: uuid.New(), Name: name}); err != nil {
		return nil, err
	}
	return s.unitRepo.GetByName(ctx, name)
}

func (s *catalogService) findOrCreateCategory(ctx context.Context, name string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err := s.categoryRepo.Create(ctx, &models.Category{ID: uuid.New(), Name: name}); err != nil {
		return nil, err
	}
	return s.categoryRepo.GetByName(ctx, name)
}
