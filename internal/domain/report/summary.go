package report

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RevenueSummary is read from the total row only
type RevenueSummary struct {
	SalesRevenue       decimal.Decimal `json:"sales_revenue"`
	SalesCOGS          decimal.Decimal `json:"sales_cogs"`
	GrossProfit        decimal.Decimal `json:"gross_profit"`
	RepairRevenue      decimal.Decimal `json:"repair_revenue"`
	RepairMaterialCost decimal.Decimal `json:"repair_material_cost"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	OtherIncome        decimal.Decimal `json:"other_income"`
	OperatingExpenses  decimal.Decimal `json:"operating_expenses"`
	NetProfit          decimal.Decimal `json:"net_profit"`
	ProfitMargin       decimal.Decimal `json:"profit_margin"` // Percentage
}

// CashflowSummary is read from the total row and the category gaps
type CashflowSummary struct {
	Inflow             decimal.Decimal `json:"inflow"`
	Outflow            decimal.Decimal `json:"outflow"`
	Net                decimal.Decimal `json:"net"`
	UnclassifiedCount  int             `json:"unclassified_count"`
	UnclassifiedAmount decimal.Decimal `json:"unclassified_amount"`
}

// ProductionSummary covers non-cancelled production orders in range
type ProductionSummary struct {
	OrderCount    int             `json:"order_count"`
	UnitsProduced decimal.Decimal `json:"units_produced"`
	TotalCost     decimal.Decimal `json:"total_cost"`
}

// InventorySummary covers stock bought and stock produced
type InventorySummary struct {
	InventoryPurchases decimal.Decimal `json:"inventory_purchases"`
	ProducedValue      decimal.Decimal `json:"produced_value"`
}

// Summary is the set of headline figures shown above the daily table
type Summary struct {
	Range      DateRange         `json:"range"`
	Revenue    RevenueSummary    `json:"revenue"`
	Cashflow   CashflowSummary   `json:"cashflow"`
	Production ProductionSummary `json:"production"`
	Inventory  InventorySummary  `json:"inventory"`
}

// Summarize derives the headline figures. Revenue, cashflow and inventory
// purchases come from the total row so the cards always agree with the table.
// Repair revenue is labour only and includes unpaid repairs, exactly as the
// daily rows count them.
func Summarize(report *DailyReport, filtered Records) Summary {
	total := report.Total

	revenue := RevenueSummary{
		SalesRevenue:       total.SalesRevenue,
		SalesCOGS:          total.SalesCOGS,
		GrossProfit:        total.SalesProfit,
		RepairRevenue:      total.RepairLaborCost,
		RepairMaterialCost: total.RepairMaterialCost,
		TotalRevenue:       total.TotalRevenue,
		OtherIncome:        total.OtherIncome,
		OperatingExpenses:  total.OtherExpense,
		NetProfit:          total.NetProfit,
		ProfitMargin:       margin(total.NetProfit, total.TotalRevenue),
	}

	cashflow := CashflowSummary{
		Inflow:             total.TotalRevenue.Add(total.OtherIncome),
		Outflow:            total.OtherExpense.Add(total.CapitalCost),
		UnclassifiedAmount: decimal.Zero,
	}
	cashflow.Net = cashflow.Inflow.Sub(cashflow.Outflow)
	for _, gap := range report.Gaps {
		cashflow.UnclassifiedCount++
		cashflow.UnclassifiedAmount = cashflow.UnclassifiedAmount.Add(gap.Amount)
	}

	prod := ProductionSummary{UnitsProduced: decimal.Zero, TotalCost: decimal.Zero}
	for i := range filtered.ProductionOrders {
		o := &filtered.ProductionOrders[i]
		if o.Status.IsCancelled() {
			continue
		}
		prod.OrderCount++
		prod.UnitsProduced = prod.UnitsProduced.Add(o.QuantityProduced)
		prod.TotalCost = prod.TotalCost.Add(o.TotalCost)
	}

	return Summary{
		Range:      report.Range,
		Revenue:    revenue,
		Cashflow:   cashflow,
		Production: prod,
		Inventory: InventorySummary{
			InventoryPurchases: total.CapitalCost,
			ProducedValue:      prod.TotalCost,
		},
	}
}

func margin(net, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsZero() {
		return decimal.Zero
	}
	return net.Div(revenue).Mul(hundred).Round(2)
}
