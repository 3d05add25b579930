package repositories

import (
	"context"
	"fmt"

	"stockpilot/internal/apperrors"
	"stockpilot/internal/models"

	"github.com/google/uuid"
)

type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *models.Warehouse) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	GetByCode(ctx context.Context, code string) (*models.Warehouse, error)
	Update(ctx context.Context, warehouse *models.Warehouse) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error)
}

type warehouseRepo struct {
	db Database
}

func NewWarehouseRepo(db Database) WarehouseRepository {
	return &warehouseRepo{db: db}
}

func (r *warehouseRepo) Create(ctx context.Context, warehouse *models.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, code, name, address, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, warehouse.ID, warehouse.Code, warehouse.Name, warehouse.Address, warehouse.IsActive)
	return err
}

func (r *warehouseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	warehouse := &models.Warehouse{}
	query := `SELECT id, code, name, address, is_active, created_at, updated_at FROM warehouses WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&warehouse.ID, &warehouse.Code, &warehouse.Name, &warehouse.Address, &warehouse.IsActive, &warehouse.CreatedAt, &warehouse.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (r *warehouseRepo) GetByCode(ctx context.Context, code string) (*models.Warehouse, error) {
	warehouse := &models.Warehouse{}
	query := `SELECT id, code, name, address, is_active, created_at, updated_at FROM warehouses WHERE code = $1`
	err := r.db.QueryRow(ctx, query, code).Scan(&warehouse.ID, &warehouse.Code, &warehouse.Name, &warehouse.Address, &warehouse.IsActive, &warehouse.CreatedAt, &warehouse.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return warehouse, nil
}

// Update never touches the code column; the warehouse code is immutable
// after creation.
func (r *warehouseRepo) Update(ctx context.Context, warehouse *models.Warehouse) error {
	query := `
		UPDATE warehouses
		SET name = $1, address = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, warehouse.Name, warehouse.Address, warehouse.IsActive, warehouse.ID)
	return err
}

// Delete refuses while movements reference the warehouse. The check and
// the delete share one transaction, so a movement recorded in between
// cannot be orphaned.
func (r *warehouseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE warehouse_id = $1`, id).Scan(&count); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if count > 0 {
		_ = tx.Rollback(ctx)
		return &apperrors.HasDependentsError{Entity: "warehouse", ID: id, Dependents: "stock movements", Count: count}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM warehouses WHERE id = $1`, id); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// DeleteCascade removes the warehouse together with its movements in one
// transaction, so a partial failure leaves no half-deleted state. The
// caller must have confirmed the cascade explicitly.
func (r *warehouseRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM stock_movements WHERE warehouse_id = $1`, id); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("cascade delete movements: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM warehouses WHERE id = $1`, id); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("cascade delete warehouse: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *warehouseRepo) List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error) {
	query := `SELECT id, code, name, address, is_active, created_at, updated_at FROM warehouses ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warehouses []*models.Warehouse
	for rows.Next() {
		warehouse := &models.Warehouse{}
		if err := rows.Scan(&warehouse.ID, &warehouse.Code, &warehouse.Name, &warehouse.Address, &warehouse.IsActive, &warehouse.CreatedAt, &warehouse.UpdatedAt); err != nil {
			return nil, err
		}
		warehouses = append(warehouses, warehouse)
	}
	return warehouses, nil
}
