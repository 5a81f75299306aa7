package export

import (
	"bytes"
	"encoding/csv"

	"github.com/pinshop/backend/internal/domain/report"
)

// utf8BOM makes spreadsheet programs read the Vietnamese headers as UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV renders rows as CSV. Amounts are written as plain decimal strings.
func WriteCSV(rows []report.DailyReportRow) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(Headers()); err != nil {
		return nil, err
	}
	for _, row := range rows {
		rec := make([]string, 0, len(report.NumericColumns)+1)
		rec = append(rec, row.DateFormatted)
		for _, v := range values(row) {
			rec = append(rec, v.String())
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
