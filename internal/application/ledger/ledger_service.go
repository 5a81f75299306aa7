package ledger

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pinshop/backend/internal/domain/finance"
	"github.com/pinshop/backend/internal/domain/production"
	"github.com/pinshop/backend/internal/domain/repair"
	"github.com/pinshop/backend/internal/domain/report"
	"github.com/pinshop/backend/internal/domain/shared"
	"github.com/pinshop/backend/internal/domain/trade"
	csvimport "github.com/pinshop/backend/internal/infrastructure/import"
	"github.com/pinshop/backend/internal/infrastructure/telemetry"
)

// maxListDays bounds a list query so one request cannot scan the whole ledger
const maxListDays = 366

// maxImportRows bounds one cash book import
const maxImportRows = 5000

// Record kinds used in logs, spans and metrics
const (
	KindSale            = "sale"
	KindRepairOrder     = "repair_order"
	KindCashTransaction = "cash_transaction"
	KindProductionOrder = "production_order"
)

// ReportInvalidator drops cached reports after a ledger change
type ReportInvalidator interface {
	Bump(ctx context.Context) error
}

// Option configures a LedgerService
type Option func(*LedgerService)

// WithLocation sets the shop time zone used to read list date ranges
func WithLocation(loc *time.Location) Option {
	return func(s *LedgerService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithMetrics records ledger writes
func WithMetrics(m *telemetry.ReportMetrics) Option {
	return func(s *LedgerService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// LedgerService records the shop's sales, repairs, cash book entries and
// production runs. Every successful write invalidates cached reports.
type LedgerService struct {
	sales       trade.SaleRepository
	repairs     repair.RepairOrderRepository
	cash        finance.CashTransactionRepository
	production  production.ProductionOrderRepository
	invalidator ReportInvalidator
	logger      *zap.Logger
	metrics     *telemetry.ReportMetrics
	loc         *time.Location
}

// NewLedgerService creates a LedgerService. invalidator may be nil when no
// report cache is configured.
func NewLedgerService(
	sales trade.SaleRepository,
	repairs repair.RepairOrderRepository,
	cash finance.CashTransactionRepository,
	productionOrders production.ProductionOrderRepository,
	invalidator ReportInvalidator,
	logger *zap.Logger,
	opts ...Option,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &LedgerService{
		sales:       sales,
		repairs:     repairs,
		cash:        cash,
		production:  productionOrders,
		invalidator: invalidator,
		logger:      logger.Named("ledger"),
		metrics:     telemetry.NoopReportMetrics(),
		loc:         time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSale validates and stores a sale
func (s *LedgerService) CreateSale(ctx context.Context, req CreateSaleRequest) (*SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "create_sale", telemetry.SpanAttrRecordKind, KindSale)
	defer span.End()

	items := make([]trade.SaleItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = trade.SaleItem{
			Name:         it.Name,
			Quantity:     it.Quantity,
			SellingPrice: it.SellingPrice,
			CostPrice:    it.CostPrice,
		}
	}
	sale, err := trade.NewSale(req.Code, req.Date, req.Total, req.Customer, req.PaymentMethod, items)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.sales.Create(ctx, sale)
	s.afterWrite(ctx, KindSale, sale.ID, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create sale: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRecordID, sale.ID.String())

	resp := ToSaleResponse(sale)
	return &resp, nil
}

// CreateRepairOrder validates and stores a repair order
func (s *LedgerService) CreateRepairOrder(ctx context.Context, req CreateRepairOrderRequest) (*RepairOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "create_repair_order", telemetry.SpanAttrRecordKind, KindRepairOrder)
	defer span.End()

	materials := make([]repair.Material, len(req.Materials))
	for i, m := range req.Materials {
		materials[i] = repair.Material{
			MaterialName: m.MaterialName,
			Price:        m.Price,
			Quantity:     m.Quantity,
		}
	}
	order, err := repair.NewRepairOrder(req.Code, req.CreationDate, req.CustomerName, req.DeviceName,
		repair.PaymentStatus(req.PaymentStatus), req.Total, req.LaborCost, materials)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.repairs.Create(ctx, order)
	s.afterWrite(ctx, KindRepairOrder, order.ID, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create repair order: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRecordID, order.ID.String())

	resp := ToRepairOrderResponse(order)
	return &resp, nil
}

// CreateCashTransaction validates and stores a cash book entry. Categories
// the report does not know are accepted; they show up as unclassified.
func (s *LedgerService) CreateCashTransaction(ctx context.Context, req CreateCashTransactionRequest) (*CashTransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "create_cash_transaction", telemetry.SpanAttrRecordKind, KindCashTransaction)
	defer span.End()

	tx, err := finance.NewCashTransaction(req.Date, finance.TransactionType(req.Type), req.Category, req.Amount, req.Contact, req.Notes)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !tx.Category.IsKnown() {
		s.logger.Warn("Cash transaction uses a category the daily report does not classify",
			zap.String("id", tx.ID.String()),
			zap.String("category", tx.Category.String()))
	}

	err = s.cash.Create(ctx, tx)
	s.afterWrite(ctx, KindCashTransaction, tx.ID, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create cash transaction: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRecordID, tx.ID.String())

	resp := ToCashTransactionResponse(tx)
	return &resp, nil
}

// ImportCashBook reads a cash book CSV and stores every entry in one batch.
// Rows are checked by the file parser and by the cash transaction rules; if
// any row fails nothing is written and all problems are returned. With
// dryRun set the file is only checked.
func (s *LedgerService) ImportCashBook(ctx context.Context, file io.Reader, dryRun bool) (*ImportCashBookResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "import_cash_book", telemetry.SpanAttrRecordKind, KindCashTransaction)
	defer span.End()

	parsed, err := csvimport.ParseCashBook(file, s.loc, csvimport.WithMaxRows(maxImportRows))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.Invalidf("cannot read cash book: %v", err)
	}

	txs := make([]*finance.CashTransaction, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		tx, err := finance.NewCashTransaction(e.Date, finance.TransactionType(e.Type), e.Category, e.Amount, e.Contact, e.Notes)
		if err != nil {
			parsed.Errors.AddValueError(e.Line, "", err.Error(), "")
			continue
		}
		txs = append(txs, tx)
	}

	resp := &ImportCashBookResponse{
		TotalRows:   parsed.TotalRows,
		ValidRows:   len(txs),
		ErrorRows:   parsed.Errors.RowCount(),
		Errors:      parsed.Errors.Errors(),
		IsTruncated: parsed.Errors.IsTruncated(),
		TotalErrors: parsed.Errors.TotalCount(),
		DryRun:      dryRun,
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRows, parsed.TotalRows)
	if dryRun || parsed.Errors.HasErrors() {
		s.logger.Info("Cash book checked",
			zap.Int("rows", resp.TotalRows),
			zap.Int("error_rows", resp.ErrorRows),
			zap.Bool("dry_run", dryRun))
		return resp, nil
	}

	err = s.cash.CreateBatch(ctx, txs)
	s.metrics.RecordLedgerWrite(ctx, KindCashTransaction, err)
	if err != nil {
		s.logger.Error("Cash book import failed", zap.Int("rows", len(txs)), zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("import cash book: %w", err)
	}
	for _, tx := range txs {
		if !tx.Category.IsKnown() {
			s.logger.Warn("Imported cash transaction uses a category the daily report does not classify",
				zap.String("id", tx.ID.String()),
				zap.String("category", tx.Category.String()))
		}
	}
	s.logger.Info("Cash book imported", zap.Int("rows", len(txs)))
	s.invalidate(ctx, KindCashTransaction)

	resp.ImportedRows = len(txs)
	return resp, nil
}

// CreateProductionOrder validates and stores a production order
func (s *LedgerService) CreateProductionOrder(ctx context.Context, req CreateProductionOrderRequest) (*ProductionOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "create_production_order", telemetry.SpanAttrRecordKind, KindProductionOrder)
	defer span.End()

	order, err := production.NewProductionOrder(req.Code, req.CreationDate, req.ProductName,
		req.QuantityProduced, req.TotalCost, production.Status(req.Status))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.production.Create(ctx, order)
	s.afterWrite(ctx, KindProductionOrder, order.ID, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create production order: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRecordID, order.ID.String())

	resp := ToProductionOrderResponse(order)
	return &resp, nil
}

// CancelProductionOrder cancels an order so that it drops out of reports
func (s *LedgerService) CancelProductionOrder(ctx context.Context, id uuid.UUID) (*ProductionOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "cancel_production_order",
		telemetry.SpanAttrRecordKind, KindProductionOrder,
		telemetry.SpanAttrRecordID, id.String())
	defer span.End()

	order, err := s.production.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := order.Cancel(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.production.Save(ctx, order)
	s.afterWrite(ctx, KindProductionOrder, order.ID, err)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("cancel production order: %w", err)
	}

	resp := ToProductionOrderResponse(order)
	return &resp, nil
}

// ListSales returns sales dated within the query range, oldest first
func (s *LedgerService) ListSales(ctx context.Context, q RangeQuery) ([]SaleResponse, error) {
	rng, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.FindByDateRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return toResponses(sales, ToSaleResponse), nil
}

// ListRepairOrders returns repair orders created within the query range
func (s *LedgerService) ListRepairOrders(ctx context.Context, q RangeQuery) ([]RepairOrderResponse, error) {
	rng, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}
	orders, err := s.repairs.FindByDateRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("list repair orders: %w", err)
	}
	return toResponses(orders, ToRepairOrderResponse), nil
}

// ListCashTransactions returns cash book entries dated within the query range
func (s *LedgerService) ListCashTransactions(ctx context.Context, q RangeQuery) ([]CashTransactionResponse, error) {
	rng, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}
	txs, err := s.cash.FindByDateRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("list cash transactions: %w", err)
	}
	return toResponses(txs, ToCashTransactionResponse), nil
}

// ListProductionOrders returns production orders of any status in the range
func (s *LedgerService) ListProductionOrders(ctx context.Context, q RangeQuery) ([]ProductionOrderResponse, error) {
	rng, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}
	orders, err := s.production.FindByDateRange(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("list production orders: %w", err)
	}
	return toResponses(orders, ToProductionOrderResponse), nil
}

// resolveRange turns two local calendar days into an inclusive instant range
func (s *LedgerService) resolveRange(q RangeQuery) (report.DateRange, error) {
	startKey, err := report.ParseDateKey(q.StartDate)
	if err != nil {
		return report.DateRange{}, err
	}
	endKey, err := report.ParseDateKey(q.EndDate)
	if err != nil {
		return report.DateRange{}, err
	}
	first, err := startKey.Range(s.loc)
	if err != nil {
		return report.DateRange{}, err
	}
	last, err := endKey.Range(s.loc)
	if err != nil {
		return report.DateRange{}, err
	}

	rng := report.DateRange{Start: first.Start, End: last.End}
	if rng.IsEmpty() {
		return report.DateRange{}, shared.Invalidf("end_date %s is before start_date %s", q.EndDate, q.StartDate)
	}
	if days := len(rng.Days(s.loc)); days > maxListDays {
		return report.DateRange{}, shared.Invalidf("date range spans %d days, at most %d allowed", days, maxListDays)
	}
	return rng, nil
}

// afterWrite records the outcome and bumps the report cache on success
func (s *LedgerService) afterWrite(ctx context.Context, kind string, id uuid.UUID, writeErr error) {
	s.metrics.RecordLedgerWrite(ctx, kind, writeErr)
	if writeErr != nil {
		s.logger.Error("Ledger write failed",
			zap.String("kind", kind),
			zap.String("id", id.String()),
			zap.Error(writeErr))
		return
	}

	s.logger.Info("Ledger record saved",
		zap.String("kind", kind),
		zap.String("id", id.String()))
	s.invalidate(ctx, kind)
}

// invalidate bumps the report cache version. A failed bump leaves stale
// reports until their TTL; the write itself stands.
func (s *LedgerService) invalidate(ctx context.Context, kind string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil {
		s.logger.Error("Failed to invalidate cached reports",
			zap.String("kind", kind),
			zap.Error(err))
	}
}
