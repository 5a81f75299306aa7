package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pinshop/backend/internal/application/ledger"
	"github.com/pinshop/backend/internal/domain/report"
)

// PeriodQuery is the period selection of every report endpoint
type PeriodQuery struct {
	Period    string `form:"period" json:"period" binding:"omitempty,oneof=today 7days month quarter year custom"`
	Month     int    `form:"month" json:"month" binding:"omitempty,min=1,max=12"`
	Year      int    `form:"year" json:"year" binding:"omitempty,min=1900,max=9999"`
	StartDate string `form:"start_date" json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

// Request converts the query into the domain period request
func (q PeriodQuery) Request() report.PeriodRequest {
	return report.PeriodRequest{
		Filter:      report.PeriodFilter(q.Period),
		Month:       q.Month,
		Year:        q.Year,
		CustomStart: q.StartDate,
		CustomEnd:   q.EndDate,
	}
}

// SortQuery is the display order of the daily table
type SortQuery struct {
	SortBy  string `form:"sort_by" json:"sort_by"`
	SortDir string `form:"sort_dir" json:"sort_dir" binding:"omitempty,oneof=asc desc"`
}

// ExportQuery selects the period and file format of an export
type ExportQuery struct {
	PeriodQuery
	SortQuery
	Format string `form:"format" json:"format" binding:"omitempty,oneof=csv xlsx"`
}

// PeriodResponse describes the resolved period
type PeriodResponse struct {
	Period    string    `json:"period"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Timezone  string    `json:"timezone"`
	Empty     bool      `json:"empty"`
}

// DailyReportRowResponse is one table row
type DailyReportRowResponse struct {
	Date               string  `json:"date"`
	DateFormatted      string  `json:"date_formatted"`
	CapitalCost        float64 `json:"capital_cost"`
	SalesRevenue       float64 `json:"sales_revenue"`
	SalesCOGS          float64 `json:"sales_cogs"`
	RepairMaterialCost float64 `json:"repair_material_cost"`
	RepairLaborCost    float64 `json:"repair_labor_cost"`
	TotalRevenue       float64 `json:"total_revenue"`
	SalesProfit        float64 `json:"sales_profit"`
	OtherIncome        float64 `json:"other_income"`
	OtherExpense       float64 `json:"other_expense"`
	NetProfit          float64 `json:"net_profit"`
	IsTotal            bool    `json:"is_total"`
}

// UnclassifiedTransactionResponse is a cash entry that fit no column
type UnclassifiedTransactionResponse struct {
	TransactionID string  `json:"transaction_id"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	Category      string  `json:"category"`
	Amount        float64 `json:"amount"`
}

// DailyReportResponse is the daily table: day rows in display order, then the total
type DailyReportResponse struct {
	Period       PeriodResponse                    `json:"period"`
	SortBy       string                            `json:"sort_by"`
	SortDir      string                            `json:"sort_dir"`
	Rows         []DailyReportRowResponse          `json:"rows"`
	Total        DailyReportRowResponse            `json:"total"`
	Unclassified []UnclassifiedTransactionResponse `json:"unclassified"`
}

// RevenueSummaryResponse mirrors report.RevenueSummary
type RevenueSummaryResponse struct {
	SalesRevenue       float64 `json:"sales_revenue"`
	SalesCOGS          float64 `json:"sales_cogs"`
	GrossProfit        float64 `json:"gross_profit"`
	RepairRevenue      float64 `json:"repair_revenue"`
	RepairMaterialCost float64 `json:"repair_material_cost"`
	TotalRevenue       float64 `json:"total_revenue"`
	OtherIncome        float64 `json:"other_income"`
	OperatingExpenses  float64 `json:"operating_expenses"`
	NetProfit          float64 `json:"net_profit"`
	ProfitMargin       float64 `json:"profit_margin"`
}

// CashflowSummaryResponse mirrors report.CashflowSummary
type CashflowSummaryResponse struct {
	Inflow             float64 `json:"inflow"`
	Outflow            float64 `json:"outflow"`
	Net                float64 `json:"net"`
	UnclassifiedCount  int     `json:"unclassified_count"`
	UnclassifiedAmount float64 `json:"unclassified_amount"`
}

// ProductionSummaryResponse mirrors report.ProductionSummary
type ProductionSummaryResponse struct {
	OrderCount    int     `json:"order_count"`
	UnitsProduced float64 `json:"units_produced"`
	TotalCost     float64 `json:"total_cost"`
}

// InventorySummaryResponse mirrors report.InventorySummary
type InventorySummaryResponse struct {
	InventoryPurchases float64 `json:"inventory_purchases"`
	ProducedValue      float64 `json:"produced_value"`
}

// SummaryResponse holds the four summary groups
type SummaryResponse struct {
	Period     PeriodResponse            `json:"period"`
	Revenue    RevenueSummaryResponse    `json:"revenue"`
	Cashflow   CashflowSummaryResponse   `json:"cashflow"`
	Production ProductionSummaryResponse `json:"production"`
	Inventory  InventorySummaryResponse  `json:"inventory"`
}

// DayDetailResponse lists the records behind one table row
type DayDetailResponse struct {
	Date          string                           `json:"date"`
	DateFormatted string                           `json:"date_formatted"`
	Row           DailyReportRowResponse           `json:"row"`
	Sales         []ledger.SaleResponse            `json:"sales"`
	Repairs       []ledger.RepairOrderResponse     `json:"repairs"`
	Transactions  []ledger.CashTransactionResponse `json:"transactions"`
}

// ExportResult is a rendered export. With object storage configured the file
// is uploaded and URL points at a presigned download; otherwise Data carries
// the file for streaming.
type ExportResult struct {
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	Size        int        `json:"size"`
	Key         string     `json:"key,omitempty"`
	URL         string     `json:"url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Data        []byte     `json:"-"`
}

// Uploaded reports whether the file went to object storage
func (r *ExportResult) Uploaded() bool {
	return r.URL != ""
}

func toRowResponse(row report.DailyReportRow) DailyReportRowResponse {
	return DailyReportRowResponse{
		Date:               row.DateKey.String(),
		DateFormatted:      row.DateFormatted,
		CapitalCost:        toFloat64(row.CapitalCost),
		SalesRevenue:       toFloat64(row.SalesRevenue),
		SalesCOGS:          toFloat64(row.SalesCOGS),
		RepairMaterialCost: toFloat64(row.RepairMaterialCost),
		RepairLaborCost:    toFloat64(row.RepairLaborCost),
		TotalRevenue:       toFloat64(row.TotalRevenue),
		SalesProfit:        toFloat64(row.SalesProfit),
		OtherIncome:        toFloat64(row.OtherIncome),
		OtherExpense:       toFloat64(row.OtherExpense),
		NetProfit:          toFloat64(row.NetProfit),
		IsTotal:            row.IsTotal,
	}
}

func toGapResponses(gaps []report.CategoryGap) []UnclassifiedTransactionResponse {
	out := make([]UnclassifiedTransactionResponse, len(gaps))
	for i, g := range gaps {
		out[i] = UnclassifiedTransactionResponse{
			TransactionID: g.TransactionID.String(),
			Date:          g.DateKey.String(),
			Type:          g.Type.String(),
			Category:      g.Category.String(),
			Amount:        toFloat64(g.Amount),
		}
	}
	return out
}

func toSummaryResponse(period PeriodResponse, s report.Summary) *SummaryResponse {
	return &SummaryResponse{
		Period: period,
		Revenue: RevenueSummaryResponse{
			SalesRevenue:       toFloat64(s.Revenue.SalesRevenue),
			SalesCOGS:          toFloat64(s.Revenue.SalesCOGS),
			GrossProfit:        toFloat64(s.Revenue.GrossProfit),
			RepairRevenue:      toFloat64(s.Revenue.RepairRevenue),
			RepairMaterialCost: toFloat64(s.Revenue.RepairMaterialCost),
			TotalRevenue:       toFloat64(s.Revenue.TotalRevenue),
			OtherIncome:        toFloat64(s.Revenue.OtherIncome),
			OperatingExpenses:  toFloat64(s.Revenue.OperatingExpenses),
			NetProfit:          toFloat64(s.Revenue.NetProfit),
			ProfitMargin:       toFloat64(s.Revenue.ProfitMargin),
		},
		Cashflow: CashflowSummaryResponse{
			Inflow:             toFloat64(s.Cashflow.Inflow),
			Outflow:            toFloat64(s.Cashflow.Outflow),
			Net:                toFloat64(s.Cashflow.Net),
			UnclassifiedCount:  s.Cashflow.UnclassifiedCount,
			UnclassifiedAmount: toFloat64(s.Cashflow.UnclassifiedAmount),
		},
		Production: ProductionSummaryResponse{
			OrderCount:    s.Production.OrderCount,
			UnitsProduced: toFloat64(s.Production.UnitsProduced),
			TotalCost:     toFloat64(s.Production.TotalCost),
		},
		Inventory: InventorySummaryResponse{
			InventoryPurchases: toFloat64(s.Inventory.InventoryPurchases),
			ProducedValue:      toFloat64(s.Inventory.ProducedValue),
		},
	}
}

// toFloat64 converts decimal to float64 for JSON responses
func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
