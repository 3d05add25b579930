package repositories

import (
	"context"

	"stockpilot/internal/models"

	"github.com/google/uuid"
)

type UnitRepository interface {
	Create(ctx context.Context, unit *models.UnitOfMeasure) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UnitOfMeasure, error)
	GetByName(ctx context.Context, name string) (*models.UnitOfMeasure, error)
	Update(ctx context.Context, unit *models.UnitOfMeasure) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.UnitOfMeasure, error)
}

type unitRepo struct {
	db Database
}

func NewUnitRepo(db Database) UnitRepository {
	return &unitRepo{db: db}
}

func (r *unitRepo) Create(ctx context.Context, unit *models.UnitOfMeasure) error {
	query := `
		INSERT INTO units_of_measure (id, name, symbol, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (name) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, unit.ID, unit.Name, unit.Symbol)
	return err
}

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.UnitOfMeasure, error) {
	unit := &models.UnitOfMeasure{}
	query := `SELECT id, name, symbol, created_at, updated_at FROM units_of_measure WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&unit.ID, &unit.Name, &unit.Symbol, &unit.CreatedAt, &unit.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (r *unitRepo) GetByName(ctx context.Context, name string) (*models.UnitOfMeasure, error) {
	unit := &models.UnitOfMeasure{}
	query := `SELECT id, name, symbol, created_at, updated_at FROM units_of_measure WHERE name = $1`
	err := r.db.QueryRow(ctx, query, name).Scan(&unit.ID, &unit.Name, &unit.Symbol, &unit.CreatedAt, &unit.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (r *unitRepo) Update(ctx context.Context, unit *models.UnitOfMeasure) error {
	query := `
		UPDATE units_of_measure
		SET name = $1, symbol = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, unit.Name, unit.Symbol, unit.ID)
	return err
}

func (r *unitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM units_of_measure WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// List returns the whole catalog. Unit catalogs are small; resolution
// works against the full list so it stays a pure function.
func (r *unitRepo) List(ctx context.Context) ([]*models.UnitOfMeasure, error) {
	query := `SELECT id, name, symbol, created_at, updated_at FROM units_of_measure ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*models.UnitOfMeasure
	for rows.Next() {
		unit := &models.UnitOfMeasure{}
		if err := rows.Scan(&unit.ID, &unit.Name, &unit.Symbol, &unit.CreatedAt, &unit.UpdatedAt); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, nil
}
