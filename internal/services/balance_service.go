package services

import (
	"context"
	"log"
	"time"

	"stockpilot/internal/caching"
	"stockpilot/internal/models"
	"stockpilot/internal/repositories"

	"github.com/google/uuid"
)

// DefaultReorderThreshold is used when a product has no min_quantity.
// Overridable via config (inventory.default_reorder_threshold).
const DefaultReorderThreshold = 5

// balances change frequently; keep the display cache short-lived
const balanceCacheTTL = 5 * time.Minute

// BalanceService derives read-side views by folding the ledger. Cached
// balances are display-only: stock-out authorization recomputes inside
// the ledger transaction, never against this cache.
type BalanceService interface {
	BalanceOf(ctx context.Context, productID uuid.UUID, warehouseID *uuid.UUID) (int, error)
	Classify(product *models.Product, balance int) models.StockLevel
	LowStockReport(ctx context.Context) ([]*models.LowStockItem, error)
	OutOfStockReport(ctx context.Context) ([]*models.LowStockItem, error)
	WarehouseSummary(ctx context.Context, warehouseID uuid.UUID) (*models.WarehouseSummary, error)
}

type balanceService struct {
	movementRepo     repositories.MovementRepository
	productRepo      repositories.ProductRepository
	cacheService     caching.CacheService
	defaultThreshold int
}

func NewBalanceService(movementRepo repositories.MovementRepository, productRepo repositories.ProductRepository, cacheService caching.CacheService, defaultThreshold int) BalanceService {
	if defaultThreshold <= 0 {
		defaultThreshold = DefaultReorderThreshold
	}
	return &balanceService{
		movementRepo:     movementRepo,
		productRepo:      productRepo,
		cacheService:     cacheService,
		defaultThreshold: defaultThreshold,
	}
}

// BalanceOf returns the on-hand quantity for (product, warehouse), or
// the aggregate across all warehouses when warehouseID is nil.
func (s *balanceService) BalanceOf(ctx context.Context, productID uuid.UUID, warehouseID *uuid.UUID) (int, error) {
	if warehouseID == nil {
		if cached, err := s.cacheService.GetAggregateBalance(ctx, productID); cached != nil {
			return *cached, nil
		} else if err != nil {
			log.Printf("cache error for aggregate balance %s: %v", productID.String(), err)
		}

		balance, err := s.movementRepo.AggregateBalance(ctx, productID)
		if err != nil {
			return 0, err
		}
		if cacheErr := s.cacheService.SetAggregateBalance(ctx, productID, balance, balanceCacheTTL); cacheErr != nil {
			log.Printf("failed to cache aggregate balance %s: %v", productID.String(), cacheErr)
		}
		return balance, nil
	}

	if cached, err := s.cacheService.GetBalance(ctx, productID, *warehouseID); cached != nil {
		return *cached, nil
	} else if err != nil {
		log.Printf("cache error for balance %s-%s: %v", productID.String(), warehouseID.String(), err)
	}

	balance, err := s.movementRepo.BalanceFor(ctx, productID, *warehouseID)
	if err != nil {
		return 0, err
	}
	if cacheErr := s.cacheService.SetBalance(ctx, productID, *warehouseID, balance, balanceCacheTTL); cacheErr != nil {
		log.Printf("failed to cache balance %s-%s: %v", productID.String(), warehouseID.String(), cacheErr)
	}
	return balance, nil
}

// Classify maps an aggregate balance onto stock severity. Zero is its
// own bucket: an out-of-stock product is never "low stock".
func (s *balanceService) Classify(product *models.Product, balance int) models.StockLevel {
	if balance <= 0 {
		return models.StockLevelOut
	}
	if balance <= product.ReorderThreshold(s.defaultThreshold) {
		return models.StockLevelLow
	}
	return models.StockLevelIn
}

// LowStockReport lists active products at or below their threshold but
// not at zero. Inactive products keep their ledger history but are
// excluded from reorder displays.
func (s *balanceService) LowStockReport(ctx context.Context) ([]*models.LowStockItem, error) {
	items, err := s.report(ctx, models.StockLevelLow)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		breakdown, err := s.movementRepo.BreakdownByWarehouse(ctx, item.Product.ID)
		if err != nil {
			return nil, err
		}
		item.PerWarehouse = breakdown
	}
	return items, nil
}

func (s *balanceService) OutOfStockReport(ctx context.Context) ([]*models.LowStockItem, error) {
	return s.report(ctx, models.StockLevelOut)
}

func (s *balanceService) report(ctx context.Context, level models.StockLevel) ([]*models.LowStockItem, error) {
	products, err := s.productRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	balances, err := s.movementRepo.AggregateBalances(ctx)
	if err != nil {
		return nil, err
	}

	var items []*models.LowStockItem
	for _, product := range products {
		balance := balances[product.ID]
		if s.Classify(product, balance) != level {
			continue
		}
		items = append(items, &models.LowStockItem{
			Product:   product,
			Balance:   balance,
			Threshold: product.ReorderThreshold(s.defaultThreshold),
		})
	}
	return items, nil
}

func (s *balanceService) WarehouseSummary(ctx context.Context, warehouseID uuid.UUID) (*models.WarehouseSummary, error) {
	return s.movementRepo.WarehouseSummary(ctx, warehouseID)
}
