package report

import (
	"time"

	"github.com/pinshop/backend/internal/domain/finance"
	"github.com/pinshop/backend/internal/domain/repair"
	"github.com/pinshop/backend/internal/domain/trade"
)

// DayDetail is the drill-down of one report row
type DayDetail struct {
	Date         DateKey                   `json:"date"`
	Sales        []trade.Sale              `json:"sales"`
	Repairs      []repair.RepairOrder      `json:"repairs"`
	Transactions []finance.CashTransaction `json:"transactions"`
}

// DetailForDay selects the filtered records whose local date key is key. It
// shares KeyOf with Aggregate so the detail always matches its row.
func DetailForDay(key DateKey, filtered Records, loc *time.Location) DayDetail {
	detail := DayDetail{
		Date:         key,
		Sales:        []trade.Sale{},
		Repairs:      []repair.RepairOrder{},
		Transactions: []finance.CashTransaction{},
	}
	for _, s := range filtered.Sales {
		if KeyOf(s.Date, loc) == key {
			detail.Sales = append(detail.Sales, s)
		}
	}
	for _, r := range filtered.Repairs {
		if KeyOf(r.CreationDate, loc) == key {
			detail.Repairs = append(detail.Repairs, r)
		}
	}
	for _, t := range filtered.Transactions {
		if KeyOf(t.Date, loc) == key {
			detail.Transactions = append(detail.Transactions, t)
		}
	}
	return detail
}

// Row folds the detail back into a report row. For any day it equals the
// row Aggregate produced for that day.
func (d DayDetail) Row() DailyReportRow {
	row := newDayRow(d.Date)
	for i := range d.Sales {
		foldSale(&row, &d.Sales[i])
	}
	for i := range d.Repairs {
		foldRepair(&row, &d.Repairs[i])
	}
	for i := range d.Transactions {
		foldTransaction(&row, &d.Transactions[i])
	}
	row.derive()
	return row
}

// IsEmpty reports a day without activity
func (d DayDetail) IsEmpty() bool {
	return len(d.Sales) == 0 && len(d.Repairs) == 0 && len(d.Transactions) == 0
}
