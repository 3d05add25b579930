package jobs

import (
	"context"
	"log"

	"stockpilot/internal/models"
	"stockpilot/internal/services"

	"github.com/google/uuid"
)

// LowStockAlertService folds the ledger through the balance projector
// and surfaces products that need reordering.
type LowStockAlertService struct {
	balanceService services.BalanceService
}

type LowStockAlert struct {
	ProductID    uuid.UUID
	ProductCode  string
	ProductName  string
	CurrentStock int
	Threshold    int
	Level        models.StockLevel
}

func NewLowStockAlertService(balanceService services.BalanceService) *LowStockAlertService {
	return &LowStockAlertService{balanceService: balanceService}
}

// CheckLowStock collects alerts for both buckets: products at or below
// their reorder threshold and products that have hit zero.
func (a *LowStockAlertService) CheckLowStock(ctx context.Context) ([]LowStockAlert, error) {
	lowItems, err := a.balanceService.LowStockReport(ctx)
	if err != nil {
		log.Printf("Failed to build low stock report: %v", err)
		return nil, err
	}
	outItems, err := a.balanceService.OutOfStockReport(ctx)
	if err != nil {
		log.Printf("Failed to build out of stock report: %v", err)
		return nil, err
	}

	alerts := make([]LowStockAlert, 0, len(lowItems)+len(outItems))
	for _, item := range lowItems {
		alerts = append(alerts, alertFrom(item, models.StockLevelLow))
	}
	for _, item := range outItems {
		alerts = append(alerts, alertFrom(item, models.StockLevelOut))
	}
	return alerts, nil
}

func alertFrom(item *models.LowStockItem, level models.StockLevel) LowStockAlert {
	return LowStockAlert{
		ProductID:    item.Product.ID,
		ProductCode:  item.Product.Code,
		ProductName:  item.Product.Name,
		CurrentStock: item.Balance,
		Threshold:    item.Threshold,
		Level:        level,
	}
}

func (a *LowStockAlertService) LogAlerts(alerts []LowStockAlert) {
	if len(alerts) == 0 {
		log.Println("No low stock alerts to log")
		return
	}

	log.Printf("Stock alerts (%d products):", len(alerts))
	for _, alert := range alerts {
		if alert.Level == models.StockLevelOut {
			log.Printf("- Product '%s' (%s) is out of stock", alert.ProductName, alert.ProductCode)
			continue
		}
		log.Printf("- Product '%s' (%s) has %d units (threshold: %d)",
			alert.ProductName,
			alert.ProductCode,
			alert.CurrentStock,
			alert.Threshold)
	}
}
