package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	ledgerapp "github.com/pinshop/backend/internal/application/ledger"
	reportapp "github.com/pinshop/backend/internal/application/report"
	"github.com/pinshop/backend/internal/domain/finance"
	"github.com/pinshop/backend/internal/domain/trade"
	"github.com/pinshop/backend/internal/infrastructure/cache"
	"github.com/pinshop/backend/internal/infrastructure/persistence"
	"github.com/pinshop/backend/internal/infrastructure/persistence/models"
	"github.com/pinshop/backend/internal/interfaces/http/dto"
	"github.com/pinshop/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var ict = time.FixedZone("ICT", 7*60*60)

var testNow = time.Date(2024, 3, 20, 10, 0, 0, 0, ict)

// handlerEnv wires the real services over an in-memory database
type handlerEnv struct {
	db      *gorm.DB
	redis   *miniredis.Miniredis
	sales   *persistence.GormSaleRepository
	cash    *persistence.GormCashTransactionRepository
	reports *reportapp.ReportService
	ledger  *ledgerapp.LedgerService
}

func newHandlerEnv(t *testing.T, opts ...reportapp.Option) *handlerEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	reportCache := cache.NewReportCache(client, time.Hour, nil)

	sales := persistence.NewGormSaleRepository(db)
	repairs := persistence.NewGormRepairOrderRepository(db)
	cash := persistence.NewGormCashTransactionRepository(db)
	orders := persistence.NewGormProductionOrderRepository(db)

	opts = append([]reportapp.Option{
		reportapp.WithLocation(ict),
		reportapp.WithClock(func() time.Time { return testNow }),
	}, opts...)

	return &handlerEnv{
		db:      db,
		redis:   mr,
		sales:   sales,
		cash:    cash,
		reports: reportapp.NewReportService(sales, repairs, cash, orders, reportCache, nil, opts...),
		ledger:  ledgerapp.NewLedgerService(sales, repairs, cash, orders, reportCache, nil, ledgerapp.WithLocation(ict)),
	}
}

func (e *handlerEnv) addSale(t *testing.T, code string, at time.Time, qty, price, cost int64) {
	t.Helper()
	sale, err := trade.NewSale(code, at, decimal.Zero, "", "cash", []trade.SaleItem{{
		Name:         "Pin 18650",
		Quantity:     decimal.NewFromInt(qty),
		SellingPrice: decimal.NewFromInt(price),
		CostPrice:    decimal.NewFromInt(cost),
	}})
	require.NoError(t, err)
	require.NoError(t, e.sales.Create(context.Background(), sale))
}

func (e *handlerEnv) addCash(t *testing.T, at time.Time, typ finance.TransactionType, category string, amount int64) {
	t.Helper()
	tx, err := finance.NewCashTransaction(at, typ, category, decimal.NewFromInt(amount), "", "")
	require.NoError(t, err)
	require.NoError(t, e.cash.Create(context.Background(), tx))
}

// newEngine returns a bare engine carrying the request id middleware
func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData re-decodes the data envelope into dst
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}
