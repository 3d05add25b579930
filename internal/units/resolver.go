// Package units resolves a product's unit of measure from partial or
// legacy data. Catalogs evolve: ids get reassigned on import and legacy
// rows only carry names, so resolution happens at read time against the
// current catalog instead of denormalizing onto the product.
package units

import (
	"errors"

	"stockpilot/internal/models"
)

// PlaceholderSymbol is rendered when a product has no resolvable unit.
// Display callers use it as a neutral fallback; movement commands treat
// resolution failure as a hard precondition error instead.
const PlaceholderSymbol = "units"

var ErrNotFound = errors.New("unit of measure not found")

// Resolve maps a unit reference onto the catalog. First match wins:
//
//  1. id reference: looked up by id. A stale id is ErrNotFound and never
//     falls through to the name.
//  2. name reference: exact, case-sensitive name match.
//  3. no reference: ErrNotFound.
//
// Pure function, no I/O.
func Resolve(ref models.UnitRef, catalog []*models.UnitOfMeasure) (*models.ResolvedUnit, error) {
	switch ref.Kind {
	case models.UnitRefByID:
		for _, u := range catalog {
			if u.ID == ref.ID {
				return resolved(u), nil
			}
		}
		return nil, ErrNotFound
	case models.UnitRefByName:
		for _, u := range catalog {
			if u.Name == ref.Name {
				return resolved(u), nil
			}
		}
		return nil, ErrNotFound
	default:
		return nil, ErrNotFound
	}
}

func resolved(u *models.UnitOfMeasure) *models.ResolvedUnit {
	symbol := PlaceholderSymbol
	if u.Symbol != nil && *u.Symbol != "" {
		symbol = *u.Symbol
	}
	return &models.ResolvedUnit{
		ID:     u.ID,
		Name:   u.Name,
		Symbol: symbol,
	}
}
