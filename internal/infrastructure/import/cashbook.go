package csvimport

import (
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Canonical cash book columns
const (
	ColumnDate     = "date"
	ColumnType     = "type"
	ColumnCategory = "category"
	ColumnAmount   = "amount"
	ColumnContact  = "contact"
	ColumnNotes    = "notes"
)

// RequiredCashBookColumns must be present in the header
var RequiredCashBookColumns = []string{ColumnDate, ColumnType, ColumnCategory, ColumnAmount}

// CashBookAliases accepts the Vietnamese headers of the shop's spreadsheet
// next to the English ones.
var CashBookAliases = map[string]string{
	"ngày":           ColumnDate,
	"ngay":           ColumnDate,
	"loại":           ColumnType,
	"loai":           ColumnType,
	"thu/chi":        ColumnType,
	"danh mục":       ColumnCategory,
	"danh muc":       ColumnCategory,
	"số tiền":        ColumnAmount,
	"so tien":        ColumnAmount,
	"đối tác":        ColumnContact,
	"doi tac":        ColumnContact,
	"người nộp/nhận": ColumnContact,
	"ghi chú":        ColumnNotes,
	"ghi chu":        ColumnNotes,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02/01/2006 15:04",
	"2/1/2006",
}

// thousands grouping such as 1.200.000 or 1,200,000
var groupedAmount = regexp.MustCompile(`^-?\d{1,3}([.,]\d{3})+$`)

// CashBookEntry is one parsed cash book line
type CashBookEntry struct {
	Line     int
	Date     time.Time
	Type     string
	Category string
	Amount   decimal.Decimal
	Contact  string
	Notes    string
}

// CashBookResult holds the rows that parsed and the errors of those that did not
type CashBookResult struct {
	TotalRows int
	Entries   []CashBookEntry
	Errors    *ErrorCollection
}

type cashBookConfig struct {
	maxRows   int
	maxErrors int
	parser    []ParserOption
}

// CashBookOption configures ParseCashBook
type CashBookOption func(*cashBookConfig)

// WithMaxRows caps the number of data rows read
func WithMaxRows(n int) CashBookOption {
	return func(c *cashBookConfig) {
		if n > 0 {
			c.maxRows = n
		}
	}
}

// WithMaxErrors caps the number of row errors kept
func WithMaxErrors(n int) CashBookOption {
	return func(c *cashBookConfig) {
		if n > 0 {
			c.maxErrors = n
		}
	}
}

// WithParserOptions passes options through to the CSV parser
func WithParserOptions(opts ...ParserOption) CashBookOption {
	return func(c *cashBookConfig) {
		c.parser = append(c.parser, opts...)
	}
}

// ParseCashBook reads a cash book CSV. Dates without a zone are read in loc.
// File level problems are returned as errors; problems with single rows are
// collected in the result so the caller can report all of them at once.
func ParseCashBook(r io.Reader, loc *time.Location, opts ...CashBookOption) (*CashBookResult, error) {
	cfg := cashBookConfig{maxRows: 5000, maxErrors: 100}
	for _, opt := range opts {
		opt(&cfg)
	}
	if loc == nil {
		loc = time.Local
	}

	parser, err := NewCSVParser(r, append([]ParserOption{WithHeaderAliases(CashBookAliases)}, cfg.parser...)...)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.MissingHeaders(RequiredCashBookColumns); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	result := &CashBookResult{Errors: NewErrorCollection(cfg.maxErrors)}
	for {
		row, err := parser.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.TotalRows++
			result.Errors.Add(RowError{
				Row:     parser.CurrentRow(),
				Code:    ErrCodeImportMalformedRow,
				Message: err.Error(),
			})
			continue
		}
		if row.IsEmpty() {
			continue
		}
		result.TotalRows++
		if result.TotalRows > cfg.maxRows {
			result.Errors.Add(RowError{
				Row:     row.LineNumber,
				Code:    ErrCodeImportTooManyRows,
				Message: "file has more than the allowed number of rows",
			})
			break
		}

		if entry, ok := parseCashBookRow(row, loc, result.Errors); ok {
			result.Entries = append(result.Entries, entry)
		}
	}

	if result.TotalRows == 0 {
		return nil, ErrNoDataRows
	}
	return result, nil
}

func parseCashBookRow(row *Row, loc *time.Location, errs *ErrorCollection) (CashBookEntry, bool) {
	line := row.LineNumber
	entry := CashBookEntry{
		Line:     line,
		Category: row.Get(ColumnCategory),
		Contact:  row.Get(ColumnContact),
		Notes:    row.Get(ColumnNotes),
	}
	ok := true

	if raw := row.Get(ColumnDate); raw == "" {
		errs.AddRequiredError(line, ColumnDate)
		ok = false
	} else if d, err := ParseDate(raw, loc); err != nil {
		errs.AddFormatError(line, ColumnDate, "YYYY-MM-DD or DD/MM/YYYY", raw)
		ok = false
	} else {
		entry.Date = d
	}

	if raw := row.Get(ColumnType); raw == "" {
		errs.AddRequiredError(line, ColumnType)
		ok = false
	} else if t, valid := ParseTransactionType(raw); !valid {
		errs.AddValueError(line, ColumnType, "type must be income/thu or expense/chi", raw)
		ok = false
	} else {
		entry.Type = t
	}

	if entry.Category == "" {
		errs.AddRequiredError(line, ColumnCategory)
		ok = false
	}

	if raw := row.Get(ColumnAmount); raw == "" {
		errs.AddRequiredError(line, ColumnAmount)
		ok = false
	} else if a, err := ParseAmount(raw); err != nil {
		errs.AddFormatError(line, ColumnAmount, "a number such as 1.200.000 or 1200000", raw)
		ok = false
	} else {
		entry.Amount = a
	}

	return entry, ok
}

// ParseDate reads the date formats the shop's spreadsheets use
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// ParseTransactionType maps thu/chi and income/expense to the stored type
func ParseTransactionType(raw string) (string, bool) {
	switch normalizeHeader(raw) {
	case "income", "thu", "thu tiền", "thu tien":
		return "income", true
	case "expense", "chi", "chi tiền", "chi tien":
		return "expense", true
	}
	return "", false
}

// currencyMarks are matched case-insensitively, longest first
var currencyMarks = []string{"VNĐ", "VND", "₫", "Đ"}

func trimCurrencyMark(s string) string {
	for _, mark := range currencyMarks {
		if n := len(s) - len(mark); n >= 0 && strings.EqualFold(s[n:], mark) {
			return s[:n]
		}
	}
	return s
}

// ParseAmount reads amounts written with either thousands separator and an
// optional currency mark. A single separator followed by exactly three
// digits is read as grouping: "1.500" is one thousand five hundred dong.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := trimCurrencyMark(strings.TrimSpace(raw))
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")

	lastDot, lastComma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case groupedAmount.MatchString(s):
		s = strings.NewReplacer(".", "", ",", "").Replace(s)
	case lastDot >= 0 && lastComma >= 0:
		// the later separator is the decimal point
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}
