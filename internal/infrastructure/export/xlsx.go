package export

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"github.com/pinshop/backend/internal/domain/report"
)

// SheetName is the worksheet holding the report
const SheetName = "Báo cáo"

// WriteXLSX renders rows into a single-sheet workbook with a bold header,
// thousands-separated amounts and a bold total row.
func WriteXLSX(rows []report.DailyReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return nil, err
	}
	totalAmount, err := f.NewStyle(&excelize.Style{NumFmt: 3, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	headers := Headers()
	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return nil, err
	}

	for i, row := range rows {
		line := i + 2
		cells := make([]any, 0, len(headers))
		cells = append(cells, row.DateFormatted)
		for _, v := range values(row) {
			cells = append(cells, v.InexactFloat64())
		}
		start, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(SheetName, start, &cells); err != nil {
			return nil, err
		}

		style := amount
		if row.IsTotal {
			style = totalAmount
			if err := f.SetCellStyle(SheetName, start, start, bold); err != nil {
				return nil, err
			}
		}
		first, _ := excelize.CoordinatesToCellName(2, line)
		last, _ := excelize.CoordinatesToCellName(len(headers), line)
		if err := f.SetCellStyle(SheetName, first, last, style); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 14); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "B", lastCol, 20); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
