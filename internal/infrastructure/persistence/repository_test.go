package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pinshop/backend/internal/domain/finance"
	"github.com/pinshop/backend/internal/domain/production"
	"github.com/pinshop/backend/internal/domain/repair"
	"github.com/pinshop/backend/internal/domain/shared"
	"github.com/pinshop/backend/internal/domain/trade"
	"github.com/pinshop/backend/internal/infrastructure/persistence/models"
)

var ict = time.FixedZone("ICT", 7*60*60)

func setupRecordsTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every pooled connection to :memory: would be a fresh database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(models.All()...)
	require.NoError(t, err)

	return db
}

// newMockGormDB creates a postgres-dialect GORM DB over sqlmock
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func mustSale(t *testing.T, code string, date time.Time, items ...trade.SaleItem) *trade.Sale {
	sale, err := trade.NewSale(code, date, decimal.Zero, "Khách lẻ", "cash", items)
	require.NoError(t, err)
	return sale
}

func TestGormSaleRepository(t *testing.T) {
	db := setupRecordsTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	items := []trade.SaleItem{
		{Name: "Pin 18650", Quantity: decimal.NewFromInt(4), SellingPrice: decimal.NewFromInt(45000), CostPrice: decimal.NewFromInt(28000)},
		{Name: "Sạc", Quantity: decimal.NewFromInt(1), SellingPrice: decimal.NewFromInt(120000), CostPrice: decimal.NewFromInt(80000)},
	}
	first := mustSale(t, "BH-001", time.Date(2024, 3, 15, 0, 30, 0, 0, ict), items...)
	second := mustSale(t, "BH-002", time.Date(2024, 3, 15, 23, 59, 59, 0, ict), items[0])
	outside := mustSale(t, "BH-003", time.Date(2024, 3, 16, 0, 0, 0, 0, ict), items[1])
	for _, s := range []*trade.Sale{outside, second, first} {
		require.NoError(t, repo.Create(ctx, s))
	}

	t.Run("FindByID loads items in order", func(t *testing.T) {
		found, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "BH-001", found.Code)
		require.Len(t, found.Items, 2)
		assert.Equal(t, "Pin 18650", found.Items[0].Name)
		assert.True(t, found.Total.Equal(decimal.NewFromInt(300000)))
		assert.True(t, found.Cost().Equal(decimal.NewFromInt(192000)))
		assert.True(t, found.Date.Equal(first.Date))
	})

	t.Run("FindByID not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("FindByDateRange is inclusive and ordered", func(t *testing.T) {
		start := time.Date(2024, 3, 15, 0, 0, 0, 0, ict)
		end := time.Date(2024, 3, 15, 23, 59, 59, 999999999, ict)

		sales, err := repo.FindByDateRange(ctx, start, end)
		require.NoError(t, err)
		require.Len(t, sales, 2)
		assert.Equal(t, "BH-001", sales[0].Code)
		assert.Equal(t, "BH-002", sales[1].Code)
		assert.Len(t, sales[1].Items, 1)
	})
}

func TestGormRepairOrderRepository(t *testing.T) {
	db := setupRecordsTestDB(t)
	repo := NewGormRepairOrderRepository(db)
	ctx := context.Background()

	order, err := repair.NewRepairOrder("SC-01", time.Date(2024, 3, 15, 9, 0, 0, 0, ict), "Chị Lan", "Xe đạp điện",
		repair.PaymentStatusUnpaid, decimal.NewFromInt(600000), decimal.NewFromInt(250000),
		[]repair.Material{{MaterialName: "Cell pin", Price: decimal.NewFromInt(35000), Quantity: decimal.NewFromInt(10)}})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, repair.PaymentStatusUnpaid, found.PaymentStatus)
	assert.True(t, found.MaterialCost().Equal(decimal.NewFromInt(350000)))

	orders, err := repo.FindByDateRange(ctx,
		time.Date(2024, 3, 1, 0, 0, 0, 0, ict), time.Date(2024, 3, 31, 23, 59, 59, 0, ict))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Materials, 1)

	orders, err = repo.FindByDateRange(ctx,
		time.Date(2024, 4, 1, 0, 0, 0, 0, ict), time.Date(2024, 4, 30, 23, 59, 59, 0, ict))
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestGormCashTransactionRepository(t *testing.T) {
	db := setupRecordsTestDB(t)
	repo := NewGormCashTransactionRepository(db)
	ctx := context.Background()

	rent, err := finance.NewCashTransaction(time.Date(2024, 3, 15, 18, 0, 0, 0, ict), finance.TransactionTypeExpense, "Rent", decimal.NewFromInt(-20000), "", "Tiền nhà")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, rent))

	found, err := repo.FindByID(ctx, rent.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.CategoryRent, found.Category)
	assert.True(t, found.Amount.Equal(decimal.NewFromInt(-20000)), "sign is preserved")

	txs, err := repo.FindByDateRange(ctx, time.Date(2024, 3, 15, 0, 0, 0, 0, ict), time.Date(2024, 3, 15, 23, 59, 59, 0, ict))
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestGormCashTransactionRepository_CreateBatch(t *testing.T) {
	db := setupRecordsTestDB(t)
	repo := NewGormCashTransactionRepository(db)
	ctx := context.Background()
	day := time.Date(2024, 3, 16, 9, 0, 0, 0, ict)

	newTx := func(category string, amount int64) *finance.CashTransaction {
		tx, err := finance.NewCashTransaction(day, finance.TransactionTypeExpense, category, decimal.NewFromInt(amount), "", "")
		require.NoError(t, err)
		return tx
	}

	require.NoError(t, repo.CreateBatch(ctx, nil))

	payroll, utilities := newTx("payroll", 5000000), newTx("utilities", 800000)
	require.NoError(t, repo.CreateBatch(ctx, []*finance.CashTransaction{payroll, utilities}))

	t.Run("a failing row rolls back the batch", func(t *testing.T) {
		rent := newTx("rent", 3000000)
		err := repo.CreateBatch(ctx, []*finance.CashTransaction{rent, payroll})
		require.Error(t, err)

		_, err = repo.FindByID(ctx, rent.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	txs, err := repo.FindByDateRange(ctx, day.Add(-time.Hour), day.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestGormCashTransactionRepository_FindByDateRangeQuery(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormCashTransactionRepository(gormDB)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, ict)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, ict)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "date", "type", "category", "amount", "contact", "notes"}).
		AddRow(id.String(), start, start, start.UTC(), "income", "other_income", "15000", "", "")

	mock.ExpectQuery(`SELECT \* FROM "cash_transactions" WHERE date >= \$1 AND date <= \$2 ORDER BY date ASC, created_at ASC`).
		WithArgs(start.UTC(), end.UTC()).
		WillReturnRows(rows)

	txs, err := repo.FindByDateRange(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, id, txs[0].ID)
	assert.Equal(t, finance.CategoryOtherIncome, txs[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCashTransactionRepository_QueryError(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormCashTransactionRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "cash_transactions"`).WillReturnError(errors.New("connection reset"))

	_, err := repo.FindByDateRange(context.Background(), time.Now(), time.Now())
	assert.EqualError(t, err, "connection reset")
}

func TestGormProductionOrderRepository(t *testing.T) {
	db := setupRecordsTestDB(t)
	repo := NewGormProductionOrderRepository(db)
	ctx := context.Background()

	order, err := production.NewProductionOrder("SX-01", time.Date(2024, 3, 10, 8, 0, 0, 0, ict), "Pin xe máy 60V",
		decimal.NewFromInt(2), decimal.NewFromInt(5200000), production.StatusInProgress)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, order.Cancel())
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, production.StatusCancelled, found.Status)

	// cancelled orders are still returned; the report filter drops them
	orders, err := repo.FindByDateRange(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, ict), time.Date(2024, 3, 31, 0, 0, 0, 0, ict))
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	missing := *order
	missing.ID = uuid.New()
	err = repo.Save(ctx, &missing)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
