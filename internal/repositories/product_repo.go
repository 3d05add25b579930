package repositories

import (
	"context"

	"stockpilot/internal/apperrors"
	"stockpilot/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByCode(ctx context.Context, code string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
	ListActive(ctx context.Context) ([]*models.Product, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
	CountByUnit(ctx context.Context, unitID uuid.UUID) (int, error)
}

type productRepo struct {
	db Database
}

func NewProductRepo(db Database) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, code, name, description, category_id, unit_of_measure_id, unit_of_measure_name, default_price, min_quantity, is_active, created_at, updated_at`

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, code, name, description, category_id, unit_of_measure_id, unit_of_measure_name, default_price, min_quantity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, product.ID, product.Code, product.Name, product.Description,
		product.CategoryID, product.UnitOfMeasureID, product.UnitOfMeasureName,
		product.DefaultPrice, product.MinQuantity, product.IsActive)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product := &models.Product{}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&product.ID, &product.Code, &product.Name, &product.Description,
		&product.CategoryID, &product.UnitOfMeasureID, &product.UnitOfMeasureName,
		&product.DefaultPrice, &product.MinQuantity, &product.IsActive,
		&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	product := &models.Product{}
	query := `SELECT ` + productColumns + ` FROM products WHERE code = $1`
	err := r.db.QueryRow(ctx, query, code).Scan(
		&product.ID, &product.Code, &product.Name, &product.Description,
		&product.CategoryID, &product.UnitOfMeasureID, &product.UnitOfMeasureName,
		&product.DefaultPrice, &product.MinQuantity, &product.IsActive,
		&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Update never touches the code column; the code is immutable and the
// service rejects patches that try to change it.
func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, category_id = $3, unit_of_measure_id = $4,
		    unit_of_measure_name = $5, default_price = $6, min_quantity = $7, is_active = $8,
		    updated_at = NOW()
		WHERE id = $9
	`
	_, err := r.db.Exec(ctx, query, product.Name, product.Description, product.CategoryID,
		product.UnitOfMeasureID, product.UnitOfMeasureName, product.DefaultPrice,
		product.MinQuantity, product.IsActive, product.ID)
	return err
}

// Delete refuses while ledger history references the product. The check
// and the delete share one transaction, so a movement recorded in
// between cannot be orphaned.
func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE product_id = $1`, id).Scan(&count); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if count > 0 {
		_ = tx.Rollback(ctx)
		return &apperrors.HasDependentsError{Entity: "product", ID: id, Dependents: "stock movements", Count: count}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *productRepo) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepo) ListActive(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepo) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM products WHERE category_id = $1`
	err := r.db.QueryRow(ctx, query, categoryID).Scan(&count)
	return count, err
}

func (r *productRepo) CountByUnit(ctx context.Context, unitID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM products WHERE unit_of_measure_id = $1`
	err := r.db.QueryRow(ctx, query, unitID).Scan(&count)
	return count, err
}

func scanProducts(rows pgx.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(
			&product.ID, &product.Code, &product.Name, &product.Description,
			&product.CategoryID, &product.UnitOfMeasureID, &product.UnitOfMeasureName,
			&product.DefaultPrice, &product.MinQuantity, &product.IsActive,
			&product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}
