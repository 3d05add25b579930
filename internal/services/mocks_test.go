package services

import (
	"context"
	"time"

	"stockpilot/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock repositories and services shared by the service tests

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) ListActive(ctx context.Context) ([]*models.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	args := m.Called(ctx, categoryID)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) CountByUnit(ctx context.Context, unitID uuid.UUID) (int, error) {
	args := m.Called(ctx, unitID)
	return args.Int(0), args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Category), args.Error(1)
}

type MockWarehouseRepository struct {
	mock.Mock
}

func (m *MockWarehouseRepository) Create(ctx context.Context, warehouse *models.Warehouse) error {
	args := m.Called(ctx, warehouse)
	return args.Error(0)
}

func (m *MockWarehouseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) GetByCode(ctx context.Context, code string) (*models.Warehouse, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) Update(ctx context.Context, warehouse *models.Warehouse) error {
	args := m.Called(ctx, warehouse)
	return args.Error(0)
}

func (m *MockWarehouseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWarehouseRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWarehouseRepository) List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Warehouse), args.Error(1)
}

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) Create(ctx context.Context, unit *models.UnitOfMeasure) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UnitOfMeasure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UnitOfMeasure), args.Error(1)
}

func (m *MockUnitRepository) GetByName(ctx context.Context, name string) (*models.UnitOfMeasure, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UnitOfMeasure), args.Error(1)
}

func (m *MockUnitRepository) Update(ctx context.Context, unit *models.UnitOfMeasure) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUnitRepository) List(ctx context.Context) ([]*models.UnitOfMeasure, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.UnitOfMeasure), args.Error(1)
}

type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Record(ctx context.Context, movement *models.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*models.StockMovement, error) {
	args := m.Called(ctx, productID, limit, offset)
	return args.Get(0).([]*models.StockMovement), args.Error(1)
}

func (m *MockMovementRepository) BalanceFor(ctx context.Context, productID, warehouseID uuid.UUID) (int, error) {
	args := m.Called(ctx, productID, warehouseID)
	return args.Int(0), args.Error(1)
}

func (m *MockMovementRepository) AggregateBalance(ctx context.Context, productID uuid.UUID) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockMovementRepository) AggregateBalances(ctx context.Context) (map[uuid.UUID]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[uuid.UUID]int), args.Error(1)
}

func (m *MockMovementRepository) BreakdownByWarehouse(ctx context.Context, productID uuid.UUID) ([]models.WarehouseStock, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]models.WarehouseStock), args.Error(1)
}

func (m *MockMovementRepository) WarehouseSummary(ctx context.Context, warehouseID uuid.UUID) (*models.WarehouseSummary, error) {
	args := m.Called(ctx, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WarehouseSummary), args.Error(1)
}

func (m *MockMovementRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockMovementRepository) CountByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int, error) {
	args := m.Called(ctx, warehouseID)
	return args.Int(0), args.Error(1)
}

// MockCacheService is a no-op friendly cache mock. Tests that do not
// care about caching set misses up front with missAll.
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	args := m.Called(ctx, product, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockCacheService) GetBalance(ctx context.Context, productID, warehouseID uuid.UUID) (*int, error) {
	args := m.Called(ctx, productID, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int), args.Error(1)
}

func (m *MockCacheService) SetBalance(ctx context.Context, productID, warehouseID uuid.UUID, quantity int, ttl time.Duration) error {
	args := m.Called(ctx, productID, warehouseID, quantity, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetAggregateBalance(ctx context.Context, productID uuid.UUID) (*int, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int), args.Error(1)
}

func (m *MockCacheService) SetAggregateBalance(ctx context.Context, productID uuid.UUID, quantity int, ttl time.Duration) error {
	args := m.Called(ctx, productID, quantity, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateBalances(ctx context.Context, productID, warehouseID uuid.UUID) error {
	args := m.Called(ctx, productID, warehouseID)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func stringPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
