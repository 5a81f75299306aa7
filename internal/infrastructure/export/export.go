// Package export renders the daily report as downloadable files.
package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pinshop/backend/internal/domain/report"
	"github.com/pinshop/backend/internal/domain/shared"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts csv or xlsx, case-insensitively; empty means csv
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", shared.Invalidf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// File is a rendered export
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// columnHeaders pairs each numeric column with its printed heading
var columnHeaders = map[report.SortColumn]string{
	report.SortByCapitalCost:        "Vốn nhập hàng",
	report.SortBySalesRevenue:       "Doanh thu bán hàng",
	report.SortBySalesCOGS:          "Giá vốn hàng bán",
	report.SortByRepairMaterialCost: "Chi phí vật tư sửa chữa",
	report.SortByRepairLaborCost:    "Tiền công sửa chữa",
	report.SortByTotalRevenue:       "Tổng doanh thu",
	report.SortBySalesProfit:        "Lợi nhuận bán hàng",
	report.SortByOtherIncome:        "Thu nhập khác",
	report.SortByOtherExpense:       "Chi phí khác",
	report.SortByNetProfit:          "Lợi nhuận ròng",
}

const dateHeader = "Ngày"

// Headers returns the header line: the date column then every numeric column
func Headers() []string {
	h := make([]string, 0, len(report.NumericColumns)+1)
	h = append(h, dateHeader)
	for _, col := range report.NumericColumns {
		h = append(h, columnHeaders[col])
	}
	return h
}

// values returns the numeric cells of a row in header order
func values(row report.DailyReportRow) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(report.NumericColumns))
	for _, col := range report.NumericColumns {
		v, _ := row.Value(col)
		out = append(out, v)
	}
	return out
}

// FileName builds daily-report_{start}_{end}.{ext}
func FileName(rep *report.DailyReport, f Format) string {
	return fmt.Sprintf("daily-report_%s_%s.%s", startKey(rep), endKey(rep), f)
}

func startKey(rep *report.DailyReport) string {
	if len(rep.Days) == 0 {
		return "empty"
	}
	return string(rep.Days[0].DateKey)
}

func endKey(rep *report.DailyReport) string {
	if len(rep.Days) == 0 {
		return "empty"
	}
	return string(rep.Days[len(rep.Days)-1].DateKey)
}

// Render writes rows, which must end with the total row, in the given format
func Render(rep *report.DailyReport, rows []report.DailyReportRow, f Format) (*File, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatCSV:
		data, err = WriteCSV(rows)
	case FormatXLSX:
		data, err = WriteXLSX(rows)
	default:
		return nil, shared.Invalidf("unsupported export format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", f, err)
	}
	return &File{Name: FileName(rep, f), ContentType: f.ContentType(), Data: data}, nil
}
