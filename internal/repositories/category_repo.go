package repositories

import (
	"context"
	"fmt"

	"stockpilot/internal/apperrors"
	"stockpilot/internal/models"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Category, error)
}

type categoryRepo struct {
	db Database
}

func NewCategoryRepo(db Database) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (name) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.Name, category.Description)
	return err
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category := &models.Category{}
	query := `SELECT id, name, description, created_at, updated_at FROM categories WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{}
	query := `SELECT id, name, description, created_at, updated_at FROM categories WHERE name = $1`
	err := r.db.QueryRow(ctx, query, name).Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, category.Name, category.Description, category.ID)
	return err
}

// Delete refuses while products reference the category. The check and
// the delete share one transaction, so a product created in between
// cannot be orphaned.
func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&count); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if count > 0 {
		_ = tx.Rollback(ctx)
		return &apperrors.HasDependentsError{Entity: "category", ID: id, Dependents: "products", Count: count}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// DeleteCascade removes the category and its dependent products in one
// transaction. It aborts without deleting anything if any dependent
// product has ledger history, because movements must never be orphaned
// through a category cascade.
func (r *categoryRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}

	var withHistory int
	historyQuery := `
		SELECT COUNT(DISTINCT p.id)
		FROM products p
		JOIN stock_movements sm ON sm.product_id = p.id
		WHERE p.category_id = $1
	`
	if err := tx.QueryRow(ctx, historyQuery, id).Scan(&withHistory); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("cascade dependency check: %w", err)
	}
	if withHistory > 0 {
		_ = tx.Rollback(ctx)
		return &apperrors.HasDependentsError{
			Entity:     "category",
			ID:         id,
			Dependents: "products with ledger history",
			Count:      withHistory,
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE category_id = $1`, id); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("cascade delete products: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("cascade delete category: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *categoryRepo) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}
