package repositories

import (
	"context"
	"testing"
	"time"

	"stockpilot/internal/apperrors"
	"stockpilot/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type MovementRepoTestSuite struct {
	suite.Suite
	mock        pgxmock.PgxPoolIface
	repo        MovementRepository
	productID   uuid.UUID
	warehouseID uuid.UUID
	unitID      uuid.UUID
	context     context.Context
}

func (suite *MovementRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewMovementRepo(mock, 3*time.Second)
	suite.productID = uuid.New()
	suite.warehouseID = uuid.New()
	suite.unitID = uuid.New()
	suite.context = context.Background()
}

func (suite *MovementRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestMovementRepoTestSuite(t *testing.T) {
	suite.Run(t, new(MovementRepoTestSuite))
}

func (suite *MovementRepoTestSuite) movement(direction models.MovementDirection, quantity int) *models.StockMovement {
	return &models.StockMovement{
		ID:          uuid.New(),
		ProductID:   suite.productID,
		WarehouseID: suite.warehouseID,
		Direction:   direction,
		Quantity:    quantity,
		UnitID:      suite.unitID,
		SourceType:  models.DefaultSourceType,
	}
}

func (suite *MovementRepoTestSuite) lockKey() string {
	return suite.productID.String() + ":" + suite.warehouseID.String()
}

func (suite *MovementRepoTestSuite) expectLockAcquired() {
	suite.mock.ExpectExec(`SET LOCAL lock_timeout = '3000ms'`).
		WillReturnResult(pgxmock.NewResult("SET", 0))
	suite.mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtextextended\(\$1, 0\)\)`).
		WithArgs(suite.lockKey()).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
}

func (suite *MovementRepoTestSuite) TestRecord_StockIn_Success() {
	movement := suite.movement(models.DirectionIn, 100)

	suite.mock.ExpectBegin()
	suite.expectLockAcquired()
	suite.mock.ExpectExec(`INSERT INTO stock_movements`).
		WithArgs(movement.ID, movement.ProductID, movement.WarehouseID, movement.Direction,
			movement.Quantity, movement.UnitID, movement.UnitCost, movement.SourceType, movement.Notes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Record(suite.context, movement)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *MovementRepoTestSuite) TestRecord_StockOut_SufficientBalance() {
	movement := suite.movement(models.DirectionOut, 30)

	suite.mock.ExpectBegin()
	suite.expectLockAcquired()
	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END\), 0\)`).
		WithArgs(movement.ProductID, movement.WarehouseID).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(100))
	suite.mock.ExpectExec(`INSERT INTO stock_movements`).
		WithArgs(movement.ID, movement.ProductID, movement.WarehouseID, movement.Direction,
			movement.Quantity, movement.UnitID, movement.UnitCost, movement.SourceType, movement.Notes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Record(suite.context, movement)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *MovementRepoTestSuite) TestRecord_StockOut_InsufficientBalance() {
	movement := suite.movement(models.DirectionOut, 71)

	suite.mock.ExpectBegin()
	suite.expectLockAcquired()
	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END\), 0\)`).
		WithArgs(movement.ProductID, movement.WarehouseID).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(70))
	suite.mock.ExpectRollback()

	err := suite.repo.Record(suite.context, movement)

	var insufficient *apperrors.InsufficientStockError
	assert.ErrorAs(suite.T(), err, &insufficient)
	assert.Equal(suite.T(), 71, insufficient.Requested)
	assert.Equal(suite.T(), 70, insufficient.Available)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *MovementRepoTestSuite) TestRecord_LockTimeout_ReturnsBusy() {
	movement := suite.movement(models.DirectionOut, 10)

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`SET LOCAL lock_timeout = '3000ms'`).
		WillReturnResult(pgxmock.NewResult("SET", 0))
	suite.mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtextextended\(\$1, 0\)\)`).
		WithArgs(suite.lockKey()).
		WillReturnError(&pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"})
	suite.mock.ExpectRollback()

	err := suite.repo.Record(suite.context, movement)

	var busy *apperrors.BusyError
	assert.ErrorAs(suite.T(), err, &busy)
	assert.Equal(suite.T(), suite.lockKey(), busy.Resource)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *MovementRepoTestSuite) TestBalanceFor_FoldsDirections() {
	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END\), 0\)`).
		WithArgs(suite.productID, suite.warehouseID).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(70))

	balance, err := suite.repo.BalanceFor(suite.context, suite.productID, suite.warehouseID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 70, balance)
}

func (suite *MovementRepoTestSuite) TestBalanceFor_NoMovementsIsZero() {
	suite.mock.ExpectQuery(`SELECT COALESCE\(SUM\(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END\), 0\)`).
		WithArgs(suite.productID, suite.warehouseID).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(0))

	balance, err := suite.repo.BalanceFor(suite.context, suite.productID, suite.warehouseID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, balance)
}

func (suite *MovementRepoTestSuite) TestAggregateBalances_GroupsByProduct() {
	otherProduct := uuid.New()
	suite.mock.ExpectQuery(`SELECT product_id, COALESCE\(SUM\(CASE WHEN direction = 'IN' THEN quantity ELSE -quantity END\), 0\)`).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "coalesce"}).
			AddRow(suite.productID, 70).
			AddRow(otherProduct, 0))

	balances, err := suite.repo.AggregateBalances(suite.context)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 70, balances[suite.productID])
	assert.Equal(suite.T(), 0, balances[otherProduct])
	assert.Len(suite.T(), balances, 2)
}

func (suite *MovementRepoTestSuite) TestBreakdownByWarehouse() {
	secondWarehouse := uuid.New()
	suite.mock.ExpectQuery(`SELECT sm.warehouse_id, w.name`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"warehouse_id", "name", "coalesce"}).
			AddRow(suite.warehouseID, "Central", 40).
			AddRow(secondWarehouse, "North", 30))

	breakdown, err := suite.repo.BreakdownByWarehouse(suite.context, suite.productID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), breakdown, 2)
	assert.Equal(suite.T(), "Central", breakdown[0].WarehouseName)
	assert.Equal(suite.T(), 40, breakdown[0].Quantity)
	assert.Equal(suite.T(), 30, breakdown[1].Quantity)
}

func (suite *MovementRepoTestSuite) TestCountByProduct() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM stock_movements WHERE product_id = \$1`).
		WithArgs(suite.productID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := suite.repo.CountByProduct(suite.context, suite.productID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, count)
}
