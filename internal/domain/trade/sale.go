package trade

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pinshop/backend/internal/domain/shared"
)

// SaleItem is one line of a sale
type SaleItem struct {
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
}

// LineTotal returns selling price times quantity
func (i SaleItem) LineTotal() decimal.Decimal {
	return i.SellingPrice.Mul(i.Quantity)
}

// LineCost returns cost price times quantity
func (i SaleItem) LineCost() decimal.Decimal {
	return i.CostPrice.Mul(i.Quantity)
}

// Sale is a completed point-of-sale ticket
type Sale struct {
	shared.BaseEntity
	Code          string          `json:"code"`
	Date          time.Time       `json:"date"`
	Total         decimal.Decimal `json:"total"`
	Customer      string          `json:"customer"`
	PaymentMethod string          `json:"payment_method"`
	Items         []SaleItem      `json:"items"`
}

// NewSale validates the items and creates a sale. A zero total is replaced by
// the sum of the line totals.
func NewSale(code string, date time.Time, total decimal.Decimal, customer, paymentMethod string, items []SaleItem) (*Sale, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.Invalidf("sale code cannot be empty")
	}
	if date.IsZero() {
		return nil, shared.Invalidf("sale date is required")
	}
	if len(items) == 0 {
		return nil, shared.Invalidf("sale %s has no items", code)
	}
	lines := decimal.Zero
	for idx, item := range items {
		if !item.Quantity.IsPositive() {
			return nil, shared.Invalidf("item %d: quantity must be positive", idx+1)
		}
		if item.SellingPrice.IsNegative() || item.CostPrice.IsNegative() {
			return nil, shared.Invalidf("item %d: prices cannot be negative", idx+1)
		}
		lines = lines.Add(item.LineTotal())
	}
	if total.IsNegative() {
		return nil, shared.Invalidf("sale total cannot be negative")
	}
	if total.IsZero() {
		total = lines
	}

	return &Sale{
		BaseEntity:    shared.NewBaseEntity(),
		Code:          code,
		Date:          date,
		Total:         total,
		Customer:      strings.TrimSpace(customer),
		PaymentMethod: paymentMethod,
		Items:         items,
	}, nil
}

// Cost returns the cost of goods sold for this sale
func (s *Sale) Cost() decimal.Decimal {
	cost := decimal.Zero
	for _, item := range s.Items {
		cost = cost.Add(item.LineCost())
	}
	return cost
}

// SaleRepository persists sales
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	// FindByDateRange returns sales whose date is within [start, end], oldest first
	FindByDateRange(ctx context.Context, start, end time.Time) ([]Sale, error)
}
