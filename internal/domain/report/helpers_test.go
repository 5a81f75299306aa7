package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pinshop/backend/internal/domain/finance"
	"github.com/pinshop/backend/internal/domain/production"
	"github.com/pinshop/backend/internal/domain/repair"
	"github.com/pinshop/backend/internal/domain/shared"
	"github.com/pinshop/backend/internal/domain/trade"
)

// ict is Indochina Time, the shop's wall clock
var ict = time.FixedZone("ICT", 7*60*60)

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, ict)
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func base() shared.BaseEntity {
	return shared.BaseEntity{ID: uuid.New()}
}

func newSale(date time.Time, total int64, items ...trade.SaleItem) trade.Sale {
	return trade.Sale{BaseEntity: base(), Code: "BH", Date: date, Total: dec(total), Items: items}
}

func item(cost, qty int64) trade.SaleItem {
	return trade.SaleItem{Name: "Pin", CostPrice: dec(cost), Quantity: dec(qty), SellingPrice: dec(cost)}
}

func newRepair(date time.Time, status repair.PaymentStatus, total, labor int64, materials ...repair.Material) repair.RepairOrder {
	return repair.RepairOrder{
		BaseEntity:    base(),
		Code:          "SC",
		CreationDate:  date,
		PaymentStatus: status,
		Total:         dec(total),
		LaborCost:     dec(labor),
		Materials:     materials,
	}
}

func material(price, qty int64) repair.Material {
	return repair.Material{MaterialName: "Linh kiện", Price: dec(price), Quantity: dec(qty)}
}

func newTx(date time.Time, typ finance.TransactionType, category string, amount int64) finance.CashTransaction {
	return finance.CashTransaction{
		BaseEntity: base(),
		Date:       date,
		Type:       typ,
		Category:   finance.Category(category),
		Amount:     dec(amount),
	}
}

func newProduction(date time.Time, status production.Status, qty, cost int64) production.ProductionOrder {
	return production.ProductionOrder{
		BaseEntity:       base(),
		Code:             "SX",
		CreationDate:     date,
		ProductName:      "Pin 48V",
		QuantityProduced: dec(qty),
		TotalCost:        dec(cost),
		Status:           status,
	}
}

func dayRange(y int, m time.Month, d int) DateRange {
	start := time.Date(y, m, d, 0, 0, 0, 0, ict)
	return DateRange{Start: start, End: endOfDay(start)}
}
