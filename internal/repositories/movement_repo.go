package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockpilot/internal/apperrors"
	"stockpilot/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// MovementRepository is the append-only write path and the read-side
// folds over the stock ledger. There are no update or delete statements
// for movements: corrections are compensating entries.
type MovementRepository interface {
	Record(ctx context.Context, movement *models.StockMovement) error
	ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*models.StockMovement, error)
	BalanceFor(ctx context.Context, productID, warehouseID uuid.UUID) (int, error)
	AggregateBalance(ctx context.Context, productID uuid.UUID) (int, error)
	AggregateBalances(ctx context.Context) (map[uuid.UUID]int, error)
	BreakdownByWarehouse(ctx context.Context, productID uuid.UUID) ([]models.WarehouseStock, error)
	WarehouseSummary(ctx context.Context, warehouseID uuid.UUID) (*models.WarehouseSummary, error)
	CountByProduct(ctx context.Context, productID uuid.UUID) (int, error)
	CountByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int, error)
}

type movementRepo struct {
	db          Database
	lockTimeout time.Duration
}

func NewMovementRepo(db Database, lockTimeout time.Duration) MovementRepository {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &movementRepo{db: db, lockTimeout: lockTimeout}
}

const balanceQuery = `
	SELECT COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END), 0)
	FROM stock_movements
	WHERE product_id = $1 AND warehouse_id = $2
`

const insertMovementQuery = `
	INSERT INTO stock_movements (id, product_id, warehouse_id, direction, quantity, unit_id, unit_cost, source_type, notes, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
`

// lock_not_available, raised when lock_timeout expires.
const pgLockNotAvailable = "55P03"

// Record appends one movement. The balance recomputation and the append
// run inside a single transaction serialized per (product, warehouse) by
// a Postgres advisory lock, so two concurrent OUT commands cannot both
// pass the insufficient-stock check. The lock wait is bounded by
// lock_timeout and surfaces as a BusyError instead of hanging.
func (r *movementRepo) Record(ctx context.Context, movement *models.StockMovement) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}

	lockKey := movement.ProductID.String() + ":" + movement.WarehouseID.String()
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		_ = tx.Rollback(ctx)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
			return &apperrors.BusyError{Resource: lockKey}
		}
		return err
	}

	if movement.Direction == models.DirectionOut {
		var available int
		if err := tx.QueryRow(ctx, balanceQuery, movement.ProductID, movement.WarehouseID).Scan(&available); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		if available < movement.Quantity {
			_ = tx.Rollback(ctx)
			return &apperrors.InsufficientStockError{
				ProductID:   movement.ProductID,
				WarehouseID: movement.WarehouseID,
				Requested:   movement.Quantity,
				Available:   available,
			}
		}
	}

	if _, err := tx.Exec(ctx, insertMovementQuery,
		movement.ID, movement.ProductID, movement.WarehouseID, movement.Direction,
		movement.Quantity, movement.UnitID, movement.UnitCost, movement.SourceType, movement.Notes); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *movementRepo) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*models.StockMovement, error) {
	query := `
		SELECT id, product_id, warehouse_id, direction, quantity, unit_id, unit_cost, source_type, notes, created_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*models.StockMovement
	for rows.Next() {
		movement := &models.StockMovement{}
		if err := rows.Scan(&movement.ID, &movement.ProductID, &movement.WarehouseID, &movement.Direction,
			&movement.Quantity, &movement.UnitID, &movement.UnitCost, &movement.SourceType,
			&movement.Notes, &movement.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}
	return movements, nil
}

func (r *movementRepo) BalanceFor(ctx context.Context, productID, warehouseID uuid.UUID) (int, error) {
	var balance int
	err := r.db.QueryRow(ctx, balanceQuery, productID, warehouseID).Scan(&balance)
	return balance, err
}

func (r *movementRepo) AggregateBalance(ctx context.Context, productID uuid.UUID) (int, error) {
	var balance int
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END), 0)
		FROM stock_movements
		WHERE product_id = $1
	`
	err := r.db.QueryRow(ctx, query, productID).Scan(&balance)
	return balance, err
}

// AggregateBalances folds the whole ledger into per-product totals.
// Products without movements are absent from the map; the caller treats
// them as zero.
func (r *movementRepo) AggregateBalances(ctx context.Context) (map[uuid.UUID]int, error) {
	query := `
		SELECT product_id, COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END), 0)
		FROM stock_movements
		GROUP BY product_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make(map[uuid.UUID]int)
	for rows.Next() {
		var productID uuid.UUID
		var balance int
		if err := rows.Scan(&productID, &balance); err != nil {
			return nil, err
		}
		balances[productID] = balance
	}
	return balances, nil
}

func (r *movementRepo) BreakdownByWarehouse(ctx context.Context, productID uuid.UUID) ([]models.WarehouseStock, error) {
	query := `
		SELECT sm.warehouse_id, w.name,
		       COALESCE(SUM(CASE WHEN sm.direction = 'IN' THEN sm.quantity ELSE -sm.quantity END), 0)
		FROM stock_movements sm
		JOIN warehouses w ON w.id = sm.warehouse_id
		WHERE sm.product_id = $1
		GROUP BY sm.warehouse_id, w.name
		ORDER BY w.name
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breakdown []models.WarehouseStock
	for rows.Next() {
		var entry models.WarehouseStock
		if err := rows.Scan(&entry.WarehouseID, &entry.WarehouseName, &entry.Quantity); err != nil {
			return nil, err
		}
		breakdown = append(breakdown, entry)
	}
	return breakdown, nil
}

// WarehouseSummary aggregates positive balances held in one warehouse:
// distinct products, total units and total value (balance x default
// price per product).
func (r *movementRepo) WarehouseSummary(ctx context.Context, warehouseID uuid.UUID) (*models.WarehouseSummary, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(qty), 0), COALESCE(SUM(qty * default_price), 0)
		FROM (
			SELECT p.default_price,
			       SUM(CASE WHEN sm.direction = 'IN' THEN sm.quantity ELSE -sm.quantity END) AS qty
			FROM stock_movements sm
			JOIN products p ON p.id = sm.product_id
			WHERE sm.warehouse_id = $1
			GROUP BY p.id, p.default_price
		) balances
		WHERE qty > 0
	`
	summary := &models.WarehouseSummary{WarehouseID: warehouseID}
	err := r.db.QueryRow(ctx, query, warehouseID).Scan(&summary.ProductCount, &summary.TotalUnits, &summary.TotalValue)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *movementRepo) CountByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE product_id = $1`, productID).Scan(&count)
	return count, err
}

func (r *movementRepo) CountByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE warehouse_id = $1`, warehouseID).Scan(&count)
	return count, err
}
