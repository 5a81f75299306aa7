package report

import (
	"github.com/shopspring/decimal"
)

// DailyReportRow is one line of the daily financial report. The total row
// carries IsTotal and TotalKey.
type DailyReportRow struct {
	DateKey            DateKey         `json:"date_key"`
	DateFormatted      string          `json:"date_formatted"`
	CapitalCost        decimal.Decimal `json:"capital_cost"`
	SalesRevenue       decimal.Decimal `json:"sales_revenue"`
	SalesCOGS          decimal.Decimal `json:"sales_cogs"`
	RepairMaterialCost decimal.Decimal `json:"repair_material_cost"`
	RepairLaborCost    decimal.Decimal `json:"repair_labor_cost"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	SalesProfit        decimal.Decimal `json:"sales_profit"`
	OtherIncome        decimal.Decimal `json:"other_income"`
	OtherExpense       decimal.Decimal `json:"other_expense"`
	NetProfit          decimal.Decimal `json:"net_profit"`
	IsTotal            bool            `json:"is_total"`
}

// TotalLabel is the display label of the total row
const TotalLabel = "Tổng cộng"

func newDayRow(key DateKey) DailyReportRow {
	return DailyReportRow{
		DateKey:            key,
		DateFormatted:      key.Formatted(),
		CapitalCost:        decimal.Zero,
		SalesRevenue:       decimal.Zero,
		SalesCOGS:          decimal.Zero,
		RepairMaterialCost: decimal.Zero,
		RepairLaborCost:    decimal.Zero,
		TotalRevenue:       decimal.Zero,
		SalesProfit:        decimal.Zero,
		OtherIncome:        decimal.Zero,
		OtherExpense:       decimal.Zero,
		NetProfit:          decimal.Zero,
	}
}

func newTotalRow() DailyReportRow {
	row := newDayRow(TotalKey)
	row.DateFormatted = TotalLabel
	row.IsTotal = true
	return row
}

// derive fills the computed columns from the folded ones
func (r *DailyReportRow) derive() {
	r.TotalRevenue = r.SalesRevenue.Add(r.RepairLaborCost)
	r.NetProfit = r.SalesProfit.Add(r.OtherIncome).Sub(r.OtherExpense)
}

// accumulate adds every numeric column of o, computed columns included
func (r *DailyReportRow) accumulate(o DailyReportRow) {
	r.CapitalCost = r.CapitalCost.Add(o.CapitalCost)
	r.SalesRevenue = r.SalesRevenue.Add(o.SalesRevenue)
	r.SalesCOGS = r.SalesCOGS.Add(o.SalesCOGS)
	r.RepairMaterialCost = r.RepairMaterialCost.Add(o.RepairMaterialCost)
	r.RepairLaborCost = r.RepairLaborCost.Add(o.RepairLaborCost)
	r.TotalRevenue = r.TotalRevenue.Add(o.TotalRevenue)
	r.SalesProfit = r.SalesProfit.Add(o.SalesProfit)
	r.OtherIncome = r.OtherIncome.Add(o.OtherIncome)
	r.OtherExpense = r.OtherExpense.Add(o.OtherExpense)
	r.NetProfit = r.NetProfit.Add(o.NetProfit)
}

// Value returns the numeric column col. The date column has no numeric value.
func (r DailyReportRow) Value(col SortColumn) (decimal.Decimal, bool) {
	switch col {
	case SortByCapitalCost:
		return r.CapitalCost, true
	case SortBySalesRevenue:
		return r.SalesRevenue, true
	case SortBySalesCOGS:
		return r.SalesCOGS, true
	case SortByRepairMaterialCost:
		return r.RepairMaterialCost, true
	case SortByRepairLaborCost:
		return r.RepairLaborCost, true
	case SortByTotalRevenue:
		return r.TotalRevenue, true
	case SortBySalesProfit:
		return r.SalesProfit, true
	case SortByOtherIncome:
		return r.OtherIncome, true
	case SortByOtherExpense:
		return r.OtherExpense, true
	case SortByNetProfit:
		return r.NetProfit, true
	}
	return decimal.Zero, false
}
