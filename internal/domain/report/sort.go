package report

import (
	"slices"
	"strings"

	"github.com/pinshop/backend/internal/domain/shared"
)

// SortColumn names a sortable report column
type SortColumn string

const (
	SortByDate               SortColumn = "date"
	SortByCapitalCost        SortColumn = "capital_cost"
	SortBySalesRevenue       SortColumn = "sales_revenue"
	SortBySalesCOGS          SortColumn = "sales_cogs"
	SortByRepairMaterialCost SortColumn = "repair_material_cost"
	SortByRepairLaborCost    SortColumn = "repair_labor_cost"
	SortByTotalRevenue       SortColumn = "total_revenue"
	SortBySalesProfit        SortColumn = "sales_profit"
	SortByOtherIncome        SortColumn = "other_income"
	SortByOtherExpense       SortColumn = "other_expense"
	SortByNetProfit          SortColumn = "net_profit"
)

// NumericColumns lists every numeric column in display order
var NumericColumns = []SortColumn{
	SortByCapitalCost,
	SortBySalesRevenue,
	SortBySalesCOGS,
	SortByRepairMaterialCost,
	SortByRepairLaborCost,
	SortByTotalRevenue,
	SortBySalesProfit,
	SortByOtherIncome,
	SortByOtherExpense,
	SortByNetProfit,
}

// SortDirection is asc or desc
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortColumn defaults to the date column
func ParseSortColumn(s string) (SortColumn, error) {
	col := SortColumn(strings.ToLower(strings.TrimSpace(s)))
	if col == "" || col == SortByDate {
		return SortByDate, nil
	}
	if slices.Contains(NumericColumns, col) {
		return col, nil
	}
	return "", shared.Invalidf("cannot sort by %q", s)
}

// ParseSortDirection defaults to ascending
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", shared.Invalidf("sort direction must be asc or desc, got %q", s)
}

// SortRows returns a new slice of the day rows ordered by col and dir, with
// the total row pinned last. Ties keep date order.
func SortRows(report *DailyReport, col SortColumn, dir SortDirection) ([]DailyReportRow, error) {
	if col != SortByDate && !slices.Contains(NumericColumns, col) {
		return nil, shared.Invalidf("cannot sort by %q", col)
	}
	if dir != SortAsc && dir != SortDesc {
		return nil, shared.Invalidf("sort direction must be asc or desc, got %q", dir)
	}

	rows := slices.Clone(report.Days)
	slices.SortStableFunc(rows, func(a, b DailyReportRow) int {
		var c int
		if col == SortByDate {
			c = strings.Compare(string(a.DateKey), string(b.DateKey))
		} else {
			av, _ := a.Value(col)
			bv, _ := b.Value(col)
			c = av.Cmp(bv)
		}
		if dir == SortDesc {
			return -c
		}
		return c
	})
	return append(rows, report.Total), nil
}
