package services

import (
	"context"
	"errors"
	"log"

	"stockpilot/internal/apperrors"
	"stockpilot/internal/caching"
	"stockpilot/internal/models"
	"stockpilot/internal/repositories"
	"stockpilot/internal/units"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// InventoryService is the public facade over the catalog, the unit
// resolver, the stock ledger and the balance projector. Every failure
// returns a typed error; nothing is downgraded to success.
type InventoryService interface {
	StockIn(ctx context.Context, cmd *models.StockInCommand) (uuid.UUID, error)
	StockOut(ctx context.Context, cmd *models.StockOutCommand) (uuid.UUID, error)
	CheckAvailability(ctx context.Context, productID, warehouseID uuid.UUID, quantity int) (*models.Availability, error)
	GetProductDetail(ctx context.Context, productID uuid.UUID) (*models.ProductDetail, error)
	GetMovementHistory(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*models.StockMovement, error)
	GetLowStock(ctx context.Context) ([]*models.LowStockItem, error)
	GetOutOfStock(ctx context.Context) ([]*models.LowStockItem, error)
}

type inventoryService struct {
	productRepo    repositories.ProductRepository
	warehouseRepo  repositories.WarehouseRepository
	unitRepo       repositories.UnitRepository
	movementRepo   repositories.MovementRepository
	balanceService BalanceService
	cacheService   caching.CacheService
}

func NewInventoryService(
	productRepo repositories.ProductRepository,
	warehouseRepo repositories.WarehouseRepository,
	unitRepo repositories.UnitRepository,
	movementRepo repositories.MovementRepository,
	balanceService BalanceService,
	cacheService caching.CacheService,
) InventoryService {
	return &inventoryService{
		productRepo:    productRepo,
		warehouseRepo:  warehouseRepo,
		unitRepo:       unitRepo,
		movementRepo:   movementRepo,
		balanceService: balanceService,
		cacheService:   cacheService,
	}
}

func (s *inventoryService) StockIn(ctx context.Context, cmd *models.StockInCommand) (uuid.UUID, error) {
	if cmd.UnitCost != nil && cmd.UnitCost.IsNegative() {
		return uuid.Nil, &apperrors.ValidationError{Field: "unit_cost", Reason: "cannot be negative"}
	}
	return s.record(ctx, cmd.ProductID, cmd.WarehouseID, models.DirectionIn, cmd.Quantity, cmd.UnitCost, cmd.SourceType, cmd.Notes)
}

func (s *inventoryService) StockOut(ctx context.Context, cmd *models.StockOutCommand) (uuid.UUID, error) {
	return s.record(ctx, cmd.ProductID, cmd.WarehouseID, models.DirectionOut, cmd.Quantity, nil, cmd.SourceType, cmd.Notes)
}

// record enforces the movement preconditions in order, fail fast with
// no partial writes:
//  1. product exists and its unit resolves
//  2. warehouse exists; stock-in requires it active
//  3. quantity is a positive integer
//  4. (OUT) sufficient balance, checked atomically with the append
//     inside the ledger transaction
func (s *inventoryService) record(ctx context.Context, productID, warehouseID uuid.UUID, direction models.MovementDirection, quantity int, unitCost *decimal.Decimal, sourceType string, notes *string) (uuid.UUID, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, &apperrors.NotFoundError{Entity: "product", Ref: productID.String()}
		}
		return uuid.Nil, err
	}

	catalog, err := s.unitRepo.List(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	unit, err := units.Resolve(product.UnitRef(), catalog)
	if err != nil {
		// NotFound is fine for display, but it is a hard precondition
		// failure for any movement command.
		return uuid.Nil, &apperrors.UnitRequiredError{ProductID: productID}
	}

	warehouse, err := s.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, &apperrors.NotFoundError{Entity: "warehouse", Ref: warehouseID.String()}
		}
		return uuid.Nil, err
	}
	if direction == models.DirectionIn && !warehouse.IsActive {
		return uuid.Nil, &apperrors.WarehouseInactiveError{WarehouseID: warehouseID}
	}

	if quantity <= 0 {
		return uuid.Nil, &apperrors.ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}

	if sourceType == "" {
		sourceType = models.DefaultSourceType
	}
	movement := &models.StockMovement{
		ID:          uuid.New(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Direction:   direction,
		Quantity:    quantity,
		UnitID:      unit.ID,
		UnitCost:    unitCost,
		SourceType:  sourceType,
		Notes:       notes,
	}
	if err := s.movementRepo.Record(ctx, movement); err != nil {
		return uuid.Nil, err
	}

	// The write landed; the cached projection is now stale.
	if cacheErr := s.cacheService.InvalidateBalances(ctx, productID, warehouseID); cacheErr != nil {
		log.Printf("failed to invalidate balance cache %s-%s: %v", productID.String(), warehouseID.String(), cacheErr)
	}
	return movement.ID, nil
}

// CheckAvailability is a read-only probe for UIs. It is advisory only:
// the authoritative check runs inside the ledger transaction.
func (s *inventoryService) CheckAvailability(ctx context.Context, productID, warehouseID uuid.UUID, quantity int) (*models.Availability, error) {
	if quantity <= 0 {
		return nil, &apperrors.ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}
	balance, err := s.movementRepo.BalanceFor(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	return &models.Availability{
		Available:         balance >= quantity,
		Requested:         quantity,
		AvailableQuantity: balance,
	}, nil
}

func (s *inventoryService) GetProductDetail(ctx context.Context, productID uuid.UUID) (*models.ProductDetail, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperrors.NotFoundError{Entity: "product", Ref: productID.String()}
		}
		return nil, err
	}

	catalog, err := s.unitRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	detail := &models.ProductDetail{
		Product:    product,
		UnitSymbol: units.PlaceholderSymbol,
	}
	if unit, err := units.Resolve(product.UnitRef(), catalog); err == nil {
		detail.Unit = unit
		detail.UnitSymbol = unit.Symbol
	}

	breakdown, err := s.movementRepo.BreakdownByWarehouse(ctx, productID)
	if err != nil {
		return nil, err
	}
	detail.PerWarehouse = breakdown
	for _, entry := range breakdown {
		detail.TotalStock += entry.Quantity
	}
	detail.TotalValue = product.DefaultPrice.Mul(decimal.NewFromInt(int64(detail.TotalStock)))
	return detail, nil
}

func (s *inventoryService) GetMovementHistory(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*models.StockMovement, error) {
	return s.movementRepo.ListByProduct(ctx, productID, limit, offset)
}

func (s *inventoryService) GetLowStock(ctx context.Context) ([]*models.LowStockItem, error) {
	return s.balanceService.LowStockReport(ctx)
}

func (s *inventoryService) GetOutOfStock(ctx context.Context) ([]*models.LowStockItem, error) {
	return s.balanceService.OutOfStockReport(ctx)
}
