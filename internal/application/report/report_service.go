package report

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pinshop/backend/internal/application/ledger"
	"github.com/pinshop/backend/internal/domain/finance"
	"github.com/pinshop/backend/internal/domain/production"
	"github.com/pinshop/backend/internal/domain/repair"
	"github.com/pinshop/backend/internal/domain/report"
	"github.com/pinshop/backend/internal/domain/shared"
	"github.com/pinshop/backend/internal/domain/trade"
	"github.com/pinshop/backend/internal/infrastructure/export"
	"github.com/pinshop/backend/internal/infrastructure/telemetry"
)

// ReportCache stores built reports. *cache.ReportCache satisfies it.
type ReportCache interface {
	Fetch(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error
}

// ExportStore keeps rendered exports and hands out download links
type ExportStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	PresignGet(ctx context.Context, key string) (string, time.Time, error)
}

// Option configures a ReportService
type Option func(*ReportService)

// WithClock replaces time.Now, for tests and back-dated reports
func WithClock(now func() time.Time) Option {
	return func(s *ReportService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the shop time zone. Calendar days are cut in it.
func WithLocation(loc *time.Location) Option {
	return func(s *ReportService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithExporter uploads exports to object storage
func WithExporter(store ExportStore) Option {
	return func(s *ReportService) {
		s.exporter = store
	}
}

// WithMetrics records report requests and builds
func WithMetrics(m *telemetry.ReportMetrics) Option {
	return func(s *ReportService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// snapshot is the cached unit: one built report and its summary
type snapshot struct {
	Report  *report.DailyReport `json:"report"`
	Summary report.Summary      `json:"summary"`
}

// ReportService builds the daily financial report and its derived views
type ReportService struct {
	sales      trade.SaleRepository
	repairs    repair.RepairOrderRepository
	cash       finance.CashTransactionRepository
	production production.ProductionOrderRepository
	cache      ReportCache
	exporter   ExportStore
	logger     *zap.Logger
	metrics    *telemetry.ReportMetrics
	now        func() time.Time
	loc        *time.Location
}

// NewReportService creates a ReportService. cache may be nil.
func NewReportService(
	sales trade.SaleRepository,
	repairs repair.RepairOrderRepository,
	cash finance.CashTransactionRepository,
	productionOrders production.ProductionOrderRepository,
	cache ReportCache,
	logger *zap.Logger,
	opts ...Option,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReportService{
		sales:      sales,
		repairs:    repairs,
		cash:       cash,
		production: productionOrders,
		cache:      cache,
		logger:     logger.Named("report"),
		metrics:    telemetry.NoopReportMetrics(),
		now:        time.Now,
		loc:        time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the shop time zone
func (s *ReportService) Location() *time.Location {
	return s.loc
}

// GetDailyReport returns one row per day of the period, sorted for display,
// and the total row.
func (s *ReportService) GetDailyReport(ctx context.Context, q PeriodQuery, sq SortQuery) (*DailyReportResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "daily", telemetry.SpanAttrPeriod, q.Period)
	defer span.End()

	col, dir, err := parseSort(sq)
	if err != nil {
		return nil, err
	}
	rng, err := s.resolve(q.Request())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	snap, err := s.snapshot(ctx, "daily", rng)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	rows, err := report.SortRows(snap.Report, col, dir)
	if err != nil {
		return nil, err
	}
	days := make([]DailyReportRowResponse, 0, len(snap.Report.Days))
	for _, row := range rows {
		if !row.IsTotal {
			days = append(days, toRowResponse(row))
		}
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrDays, len(snap.Report.Days),
		telemetry.SpanAttrGaps, len(snap.Report.Gaps))

	return &DailyReportResponse{
		Period:       s.periodResponse(q.Request(), rng),
		SortBy:       string(col),
		SortDir:      string(dir),
		Rows:         days,
		Total:        toRowResponse(snap.Report.Total),
		Unclassified: toGapResponses(snap.Report.Gaps),
	}, nil
}

// GetSummary returns the revenue, cashflow, production and inventory groups
func (s *ReportService) GetSummary(ctx context.Context, q PeriodQuery) (*SummaryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "summary", telemetry.SpanAttrPeriod, q.Period)
	defer span.End()

	rng, err := s.resolve(q.Request())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	snap, err := s.snapshot(ctx, "summary", rng)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return toSummaryResponse(s.periodResponse(q.Request(), rng), snap.Summary), nil
}

// GetDayDetail lists the sales, repairs and cash entries behind one row. The
// day must belong to the selected period.
func (s *ReportService) GetDayDetail(ctx context.Context, q PeriodQuery, date string) (*DayDetailResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "day_detail",
		telemetry.SpanAttrPeriod, q.Period,
		telemetry.SpanAttrRangeStart, date)
	defer span.End()

	key, err := report.ParseDateKey(date)
	if err != nil {
		return nil, err
	}
	rng, err := s.resolve(q.Request())
	if err != nil {
		return nil, err
	}
	if !slices.Contains(rng.Days(s.loc), key) {
		return nil, shared.Invalidf("date %s is outside the selected period", date)
	}

	day, err := key.Range(s.loc)
	if err != nil {
		return nil, err
	}
	// the period may end mid-day (custom range up to now)
	window := intersect(day, rng)

	records, err := s.loadRecords(ctx, window)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	filtered := report.FilterRecords(records, window, s.logger)
	detail := report.DetailForDay(key, filtered, s.loc)

	return &DayDetailResponse{
		Date:          key.String(),
		DateFormatted: key.Formatted(),
		Row:           toRowResponse(detail.Row()),
		Sales:         toResponses(detail.Sales, ledger.ToSaleResponse),
		Repairs:       toResponses(detail.Repairs, ledger.ToRepairOrderResponse),
		Transactions:  toResponses(detail.Transactions, ledger.ToCashTransactionResponse),
	}, nil
}

// ExportDailyReport renders the daily table as CSV or XLSX. With an export
// store the file is uploaded and a presigned link returned; an upload failure
// falls back to returning the bytes.
func (s *ReportService) ExportDailyReport(ctx context.Context, q ExportQuery) (*ExportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "export",
		telemetry.SpanAttrPeriod, q.Period,
		telemetry.SpanAttrFormat, q.Format)
	defer span.End()

	format, err := export.ParseFormat(q.Format)
	if err != nil {
		return nil, err
	}
	col, dir, err := parseSort(q.SortQuery)
	if err != nil {
		return nil, err
	}
	rng, err := s.resolve(q.Request())
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx, "export", rng)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	rows, err := report.SortRows(snap.Report, col, dir)
	if err != nil {
		return nil, err
	}
	file, err := export.Render(snap.Report, rows, format)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &ExportResult{
		FileName:    file.Name,
		ContentType: file.ContentType,
		Size:        len(file.Data),
		Data:        file.Data,
	}
	if s.exporter == nil {
		return result, nil
	}

	key, err := s.exporter.Put(ctx, file.Name, file.Data, file.ContentType)
	if err != nil {
		s.logger.Error("Export upload failed, returning file inline",
			zap.String("file", file.Name), zap.Error(err))
		return result, nil
	}
	url, expiresAt, err := s.exporter.PresignGet(ctx, key)
	if err != nil {
		s.logger.Error("Export presign failed, returning file inline",
			zap.String("key", key), zap.Error(err))
		return result, nil
	}

	result.Key = key
	result.URL = url
	result.ExpiresAt = &expiresAt
	s.logger.Info("Report export uploaded",
		zap.String("key", key),
		zap.Int("bytes", result.Size))
	return result, nil
}

// WarmReport builds a period so that the next request for it is a cache hit
func (s *ReportService) WarmReport(ctx context.Context, req report.PeriodRequest) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "warm", telemetry.SpanAttrPeriod, string(req.Filter))
	defer span.End()

	rng, err := s.resolve(req)
	if err != nil {
		return err
	}
	if _, err := s.snapshot(ctx, "warm", rng); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

func (s *ReportService) resolve(req report.PeriodRequest) (report.DateRange, error) {
	return report.ResolvePeriod(req, s.now().In(s.loc))
}

// snapshot returns the cached report for rng, building it on a miss
func (s *ReportService) snapshot(ctx context.Context, operation string, rng report.DateRange) (*snapshot, error) {
	built := false
	loader := func(ctx context.Context) (any, error) {
		built = true
		return s.build(ctx, rng)
	}

	var snap *snapshot
	if s.cache == nil {
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		snap = v.(*snapshot)
	} else {
		snap = &snapshot{}
		if err := s.cache.Fetch(ctx, snap, loader, s.cacheParts(rng)...); err != nil {
			return nil, err
		}
	}

	s.metrics.RecordRequest(ctx, operation, !built)
	return snap, nil
}

// cacheParts keys a report by zone and exact range
func (s *ReportService) cacheParts(rng report.DateRange) []string {
	return []string{
		s.loc.String(),
		rng.Start.Format(time.RFC3339Nano),
		rng.End.Format(time.RFC3339Nano),
	}
}

func (s *ReportService) build(ctx context.Context, rng report.DateRange) (*snapshot, error) {
	started := time.Now()

	records, err := s.loadRecords(ctx, rng)
	if err != nil {
		return nil, err
	}
	rep, filtered := report.Build(records, rng, s.loc, s.logger)
	summary := report.Summarize(rep, filtered)

	elapsed := time.Since(started)
	s.metrics.RecordBuild(ctx, elapsed, len(rep.Days), len(rep.Gaps))
	s.logger.Debug("Daily report built",
		zap.Time("start", rng.Start),
		zap.Time("end", rng.End),
		zap.Int("days", len(rep.Days)),
		zap.Int("records", filtered.Len()),
		zap.Int("unclassified", len(rep.Gaps)),
		zap.Duration("elapsed", elapsed))

	return &snapshot{Report: rep, Summary: summary}, nil
}

// loadRecords reads the four collections concurrently. An empty range reads nothing.
func (s *ReportService) loadRecords(ctx context.Context, rng report.DateRange) (report.Records, error) {
	var rec report.Records
	if rng.IsEmpty() {
		return rec, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sales, err := s.sales.FindByDateRange(gctx, rng.Start, rng.End)
		if err != nil {
			return fmt.Errorf("load sales: %w", err)
		}
		rec.Sales = sales
		return nil
	})
	g.Go(func() error {
		repairs, err := s.repairs.FindByDateRange(gctx, rng.Start, rng.End)
		if err != nil {
			return fmt.Errorf("load repair orders: %w", err)
		}
		rec.Repairs = repairs
		return nil
	})
	g.Go(func() error {
		txs, err := s.cash.FindByDateRange(gctx, rng.Start, rng.End)
		if err != nil {
			return fmt.Errorf("load cash transactions: %w", err)
		}
		rec.Transactions = txs
		return nil
	})
	g.Go(func() error {
		orders, err := s.production.FindByDateRange(gctx, rng.Start, rng.End)
		if err != nil {
			return fmt.Errorf("load production orders: %w", err)
		}
		rec.ProductionOrders = orders
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.Records{}, err
	}
	return rec, nil
}

func (s *ReportService) periodResponse(req report.PeriodRequest, rng report.DateRange) PeriodResponse {
	name := strings.ToLower(strings.TrimSpace(string(req.Filter)))
	if name == "" {
		name = report.PeriodMonth.String()
	}
	return PeriodResponse{
		Period:    name,
		StartDate: report.KeyOf(rng.Start, s.loc).String(),
		EndDate:   report.KeyOf(rng.End, s.loc).String(),
		Start:     rng.Start,
		End:       rng.End,
		Timezone:  s.loc.String(),
		Empty:     rng.IsEmpty(),
	}
}

func parseSort(sq SortQuery) (report.SortColumn, report.SortDirection, error) {
	col, err := report.ParseSortColumn(sq.SortBy)
	if err != nil {
		return "", "", err
	}
	dir, err := report.ParseSortDirection(sq.SortDir)
	if err != nil {
		return "", "", err
	}
	return col, dir, nil
}

func intersect(a, b report.DateRange) report.DateRange {
	out := a
	if b.Start.After(out.Start) {
		out.Start = b.Start
	}
	if b.End.Before(out.End) {
		out.End = b.End
	}
	return out
}

func toResponses[T, R any](items []T, convert func(*T) R) []R {
	out := make([]R, len(items))
	for i := range items {
		out[i] = convert(&items[i])
	}
	return out
}
