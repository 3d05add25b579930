package repositories

import (
	"context"
	"testing"
	"time"

	"stockpilot/internal/apperrors"
	"stockpilot/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ProductRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    ProductRepository
	context context.Context
}

func (suite *ProductRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewProductRepo(mock)
	suite.context = context.Background()
}

func (suite *ProductRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestProductRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProductRepoTestSuite))
}

func productRow(product *models.Product) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "code", "name", "description", "category_id", "unit_of_measure_id",
		"unit_of_measure_name", "default_price", "min_quantity", "is_active",
		"created_at", "updated_at",
	}).AddRow(
		product.ID, product.Code, product.Name, product.Description,
		product.CategoryID, product.UnitOfMeasureID, product.UnitOfMeasureName,
		product.DefaultPrice, product.MinQuantity, product.IsActive,
		time.Now(), time.Now(),
	)
}

func (suite *ProductRepoTestSuite) TestCreate_Success() {
	product := &models.Product{
		ID:           uuid.New(),
		Code:         "WIDGET-1",
		Name:         "Widget",
		DefaultPrice: decimal.NewFromInt(10),
		IsActive:     true,
	}

	suite.mock.ExpectExec(`INSERT INTO products`).
		WithArgs(product.ID, product.Code, product.Name, product.Description,
			product.CategoryID, product.UnitOfMeasureID, product.UnitOfMeasureName,
			product.DefaultPrice, product.MinQuantity, product.IsActive).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, product)
	assert.NoError(suite.T(), err)
}

func (suite *ProductRepoTestSuite) TestGetByCode_Found() {
	product := &models.Product{
		ID:           uuid.New(),
		Code:         "WIDGET-1",
		Name:         "Widget",
		DefaultPrice: decimal.NewFromInt(10),
		IsActive:     true,
	}

	suite.mock.ExpectQuery(`SELECT (.+) FROM products WHERE code = \$1`).
		WithArgs("WIDGET-1").
		WillReturnRows(productRow(product))

	got, err := suite.repo.GetByCode(suite.context, "WIDGET-1")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), product.ID, got.ID)
	assert.Equal(suite.T(), "WIDGET-1", got.Code)
}

func (suite *ProductRepoTestSuite) TestGetByCode_NotFound() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM products WHERE code = \$1`).
		WithArgs("MISSING").
		WillReturnError(pgx.ErrNoRows)

	_, err := suite.repo.GetByCode(suite.context, "MISSING")
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
}

func (suite *ProductRepoTestSuite) TestUpdate_DoesNotTouchCode() {
	product := &models.Product{
		ID:           uuid.New(),
		Code:         "WIDGET-1",
		Name:         "Widget Mk2",
		DefaultPrice: decimal.NewFromInt(12),
		IsActive:     true,
	}

	// The update statement carries every mutable column but not code.
	suite.mock.ExpectExec(`UPDATE products\s+SET name = \$1`).
		WithArgs(product.Name, product.Description, product.CategoryID,
			product.UnitOfMeasureID, product.UnitOfMeasureName, product.DefaultPrice,
			product.MinQuantity, product.IsActive, product.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Update(suite.context, product)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *ProductRepoTestSuite) TestListActive_FiltersInactive() {
	active := &models.Product{
		ID:           uuid.New(),
		Code:         "WIDGET-1",
		Name:         "Widget",
		DefaultPrice: decimal.NewFromInt(10),
		IsActive:     true,
	}

	suite.mock.ExpectQuery(`SELECT (.+) FROM products WHERE is_active ORDER BY name`).
		WillReturnRows(productRow(active))

	products, err := suite.repo.ListActive(suite.context)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), products, 1)
	assert.True(suite.T(), products[0].IsActive)
}

func (suite *ProductRepoTestSuite) TestDelete_NoHistory() {
	productID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM stock_movements WHERE product_id = \$1`).
		WithArgs(productID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	suite.mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(productID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Delete(suite.context, productID)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

// The dependent check and the delete share a transaction, so a movement
// landing after the service-level count still blocks the delete.
func (suite *ProductRepoTestSuite) TestDelete_LedgerHistoryBlocksDelete() {
	productID := uuid.New()

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM stock_movements WHERE product_id = \$1`).
		WithArgs(productID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	suite.mock.ExpectRollback()

	err := suite.repo.Delete(suite.context, productID)

	var dependents *apperrors.HasDependentsError
	assert.ErrorAs(suite.T(), err, &dependents)
	assert.Equal(suite.T(), "product", dependents.Entity)
	assert.Equal(suite.T(), 1, dependents.Count)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *ProductRepoTestSuite) TestCountByCategory() {
	categoryID := uuid.New()

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products WHERE category_id = \$1`).
		WithArgs(categoryID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	count, err := suite.repo.CountByCategory(suite.context, categoryID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, count)
}
