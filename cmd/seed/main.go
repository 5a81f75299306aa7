package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	ledgerapp "github.com/pinshop/backend/internal/application/ledger"
	"github.com/pinshop/backend/internal/infrastructure/cache"
	"github.com/pinshop/backend/internal/infrastructure/config"
	"github.com/pinshop/backend/internal/infrastructure/logger"
	"github.com/pinshop/backend/internal/infrastructure/persistence"
)

var (
	paymentMethods = []string{"cash", "transfer", "card"}
	repairStatuses = []string{"paid", "paid", "partial", "unpaid"}
	devices        = []string{"iPhone 12", "Galaxy A52", "Redmi Note 11", "Oppo Reno 7", "Xiaomi Band 7"}
	parts          = []string{"Pin", "Man hinh", "Cap sac", "Loa trong", "Camera sau"}
	incomeKinds    = []string{"other_income", "tip_jar"}
	expenseKinds   = []string{"utilities", "rent", "payroll", "logistics", "other_expense", "inventory_purchase", "marketing"}
)

func main() {
	var (
		days int
		seed uint64
	)
	flag.IntVar(&days, "days", 30, "Number of past days to fill")
	flag.Uint64Var(&seed, "seed", 0, "Random seed (0 picks one from the clock)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	loc, err := cfg.App.Location()
	if err != nil {
		log.Fatal("Invalid shop time zone", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// bump the report version so a running server drops its cached reports
	var reportCache *cache.ReportCache
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(context.Background(), cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, cached reports will expire by TTL", zap.Error(err))
		} else {
			defer func() { _ = client.Close() }()
			reportCache = cache.NewReportCache(client, cfg.Redis.ReportTTL, log)
		}
	}

	ledger := ledgerapp.NewLedgerService(
		persistence.NewGormSaleRepository(db.DB),
		persistence.NewGormRepairOrderRepository(db.DB),
		persistence.NewGormCashTransactionRepository(db.DB),
		persistence.NewGormProductionOrderRepository(db.DB),
		reportCache, log,
		ledgerapp.WithLocation(loc),
	)

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	s := &seeder{f: gofakeit.New(seed), ledger: ledger}

	ctx := context.Background()
	today := time.Now().In(loc)
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -days+1)
	for d := 0; d < days; d++ {
		if err := s.day(ctx, start.AddDate(0, 0, d)); err != nil {
			log.Fatal("Seeding failed", zap.Time("day", start.AddDate(0, 0, d)), zap.Error(err))
		}
	}

	log.Info("Seed data written",
		zap.Int("days", days),
		zap.Uint64("seed", seed),
		zap.Int("sales", s.sales),
		zap.Int("repairs", s.repairs),
		zap.Int("cash_transactions", s.cash),
		zap.Int("production_orders", s.orders),
	)
}

type seeder struct {
	f      *gofakeit.Faker
	ledger *ledgerapp.LedgerService

	seq                          int
	sales, repairs, cash, orders int
}

// at returns a moment during opening hours on the given day
func (s *seeder) at(day time.Time) time.Time {
	return day.Add(time.Duration(s.f.IntRange(8*60, 21*60)) * time.Minute)
}

func (s *seeder) code(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%06d", prefix, s.seq)
}

// vnd returns a whole amount in thousands of dong
func (s *seeder) vnd(minK, maxK int) decimal.Decimal {
	return decimal.NewFromInt(int64(s.f.IntRange(minK, maxK)) * 1000)
}

func (s *seeder) day(ctx context.Context, day time.Time) error {
	// closed roughly one day in ten
	if s.f.IntRange(1, 10) == 1 {
		return nil
	}

	for i, n := 0, s.f.IntRange(2, 8); i < n; i++ {
		var items []ledgerapp.SaleItemRequest
		for j, m := 0, s.f.IntRange(1, 3); j < m; j++ {
			cost := s.vnd(20, 400)
			items = append(items, ledgerapp.SaleItemRequest{
				Name:         s.f.ProductName(),
				Quantity:     decimal.NewFromInt(int64(s.f.IntRange(1, 3))),
				SellingPrice: cost.Mul(decimal.NewFromFloat(1.3)).Round(-3),
				CostPrice:    cost,
			})
		}
		if _, err := s.ledger.CreateSale(ctx, ledgerapp.CreateSaleRequest{
			Code:          s.code("HD"),
			Date:          s.at(day),
			Customer:      s.f.Name(),
			PaymentMethod: s.f.RandomString(paymentMethods),
			Items:         items,
		}); err != nil {
			return err
		}
		s.sales++
	}

	for i, n := 0, s.f.IntRange(0, 4); i < n; i++ {
		price := s.vnd(50, 800)
		labor := s.vnd(50, 300)
		if _, err := s.ledger.CreateRepairOrder(ctx, ledgerapp.CreateRepairOrderRequest{
			Code:          s.code("SC"),
			CreationDate:  s.at(day),
			CustomerName:  s.f.Name(),
			DeviceName:    s.f.RandomString(devices),
			PaymentStatus: s.f.RandomString(repairStatuses),
			Total:         price.Add(labor).Add(s.vnd(50, 200)),
			LaborCost:     labor,
			Materials: []ledgerapp.MaterialRequest{{
				MaterialName: s.f.RandomString(parts),
				Price:        price,
				Quantity:     decimal.NewFromInt(1),
			}},
		}); err != nil {
			return err
		}
		s.repairs++
	}

	for i, n := 0, s.f.IntRange(0, 3); i < n; i++ {
		txType, category, amount := "expense", s.f.RandomString(expenseKinds), s.vnd(30, 2000)
		if s.f.IntRange(1, 4) == 1 {
			txType, category, amount = "income", s.f.RandomString(incomeKinds), s.vnd(10, 300)
		}
		if _, err := s.ledger.CreateCashTransaction(ctx, ledgerapp.CreateCashTransactionRequest{
			Date:     s.at(day),
			Type:     txType,
			Category: category,
			Amount:   amount,
			Contact:  s.f.Company(),
		}); err != nil {
			return err
		}
		s.cash++
	}

	if s.f.IntRange(1, 5) == 1 {
		status := "completed"
		if s.f.IntRange(1, 6) == 1 {
			status = "cancelled"
		}
		if _, err := s.ledger.CreateProductionOrder(ctx, ledgerapp.CreateProductionOrderRequest{
			Code:             s.code("SX"),
			CreationDate:     s.at(day),
			ProductName:      "Pin " + s.f.RandomString(devices),
			QuantityProduced: decimal.NewFromInt(int64(s.f.IntRange(5, 40))),
			TotalCost:        s.vnd(200, 3000),
			Status:           status,
		}); err != nil {
			return err
		}
		s.orders++
	}
	return nil
}
