package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pinshop/backend/internal/domain/finance"
	"github.com/pinshop/backend/internal/domain/repair"
	"github.com/pinshop/backend/internal/domain/trade"
)

// CategoryGap is a cash transaction that matched no report column
type CategoryGap struct {
	TransactionID uuid.UUID               `json:"transaction_id"`
	DateKey       DateKey                 `json:"date_key"`
	Type          finance.TransactionType `json:"type"`
	Category      finance.Category        `json:"category"`
	Amount        decimal.Decimal         `json:"amount"`
}

// DailyReport holds one row per calendar day of Range, ascending, plus the
// total row and the transactions that could not be classified.
type DailyReport struct {
	Range    DateRange        `json:"range"`
	Location string           `json:"location"`
	Days     []DailyReportRow `json:"days"`
	Total    DailyReportRow   `json:"total"`
	Gaps     []CategoryGap    `json:"gaps"`
}

// Rows returns the day rows followed by the total row
func (r *DailyReport) Rows() []DailyReportRow {
	rows := make([]DailyReportRow, 0, len(r.Days)+1)
	rows = append(rows, r.Days...)
	return append(rows, r.Total)
}

// Row looks up the row of one day
func (r *DailyReport) Row(key DateKey) (DailyReportRow, bool) {
	for _, row := range r.Days {
		if row.DateKey == key {
			return row, true
		}
	}
	return DailyReportRow{}, false
}

// Aggregate folds already filtered records into daily rows. Every day of rng
// gets a row even without activity. An empty range yields no day rows and an
// all-zero total row.
func Aggregate(filtered Records, rng DateRange, loc *time.Location, logger *zap.Logger) *DailyReport {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	keys := rng.Days(loc)
	days := make([]DailyReportRow, len(keys))
	index := make(map[DateKey]int, len(keys))
	for i, key := range keys {
		days[i] = newDayRow(key)
		index[key] = i
	}

	rowFor := func(kind string, id uuid.UUID, at time.Time) *DailyReportRow {
		key := KeyOf(at, loc)
		i, ok := index[key]
		if !ok {
			logger.Debug("Record outside report range ignored",
				zap.String("kind", kind),
				zap.String("id", id.String()),
				zap.String("date_key", key.String()))
			return nil
		}
		return &days[i]
	}

	for i := range filtered.Sales {
		s := &filtered.Sales[i]
		if row := rowFor("sale", s.ID, s.Date); row != nil {
			foldSale(row, s)
		}
	}
	for i := range filtered.Repairs {
		r := &filtered.Repairs[i]
		if row := rowFor("repair_order", r.ID, r.CreationDate); row != nil {
			foldRepair(row, r)
		}
	}

	var gaps []CategoryGap
	for i := range filtered.Transactions {
		tx := &filtered.Transactions[i]
		row := rowFor("cash_transaction", tx.ID, tx.Date)
		if row == nil {
			continue
		}
		if !foldTransaction(row, tx) {
			gap := CategoryGap{
				TransactionID: tx.ID,
				DateKey:       row.DateKey,
				Type:          tx.Type,
				Category:      tx.Category,
				Amount:        tx.Magnitude(),
			}
			gaps = append(gaps, gap)
			logger.Warn("Cash transaction matches no report column",
				zap.String("id", tx.ID.String()),
				zap.String("type", tx.Type.String()),
				zap.String("category", tx.Category.String()),
				zap.String("date_key", row.DateKey.String()))
		}
	}

	total := newTotalRow()
	for i := range days {
		days[i].derive()
		total.accumulate(days[i])
	}

	return &DailyReport{
		Range:    rng,
		Location: loc.String(),
		Days:     days,
		Total:    total,
		Gaps:     gaps,
	}
}

// Build filters records to rng and aggregates them. The filtered records are
// returned as well so that summaries and day details work on the same set.
func Build(records Records, rng DateRange, loc *time.Location, logger *zap.Logger) (*DailyReport, Records) {
	filtered := FilterRecords(records, rng, logger)
	return Aggregate(filtered, rng, loc, logger), filtered
}

func foldSale(row *DailyReportRow, s *trade.Sale) {
	cost := s.Cost()
	row.SalesRevenue = row.SalesRevenue.Add(s.Total)
	row.SalesCOGS = row.SalesCOGS.Add(cost)
	row.SalesProfit = row.SalesProfit.Add(s.Total.Sub(cost))
}

// foldRepair counts every repair regardless of payment status
func foldRepair(row *DailyReportRow, r *repair.RepairOrder) {
	row.RepairMaterialCost = row.RepairMaterialCost.Add(r.MaterialCost())
	row.RepairLaborCost = row.RepairLaborCost.Add(r.LaborCost)
}

// foldTransaction returns false when the transaction fits no column
func foldTransaction(row *DailyReportRow, tx *finance.CashTransaction) bool {
	amount := tx.Magnitude()
	category := finance.NormalizeCategory(tx.Category.String())

	switch {
	case category == finance.CategoryInventoryPurchase:
		row.CapitalCost = row.CapitalCost.Add(amount)
	case tx.Type == finance.TransactionTypeIncome && category == finance.CategoryOtherIncome:
		row.OtherIncome = row.OtherIncome.Add(amount)
	case tx.Type == finance.TransactionTypeExpense && category.IsOperatingExpense():
		row.OtherExpense = row.OtherExpense.Add(amount)
	default:
		return false
	}
	return true
}
