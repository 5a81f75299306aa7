package repair

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pinshop/backend/internal/domain/shared"
)

// PaymentStatus of a repair order
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
)

// IsValid checks if the status is a known PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusPartial, PaymentStatusUnpaid:
		return true
	}
	return false
}

// IsCollected returns true when at least part of the order has been paid
func (s PaymentStatus) IsCollected() bool {
	return s == PaymentStatusPaid || s == PaymentStatusPartial
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// DisplayName returns the Vietnamese label
func (s PaymentStatus) DisplayName() string {
	switch s {
	case PaymentStatusPaid:
		return "Đã thanh toán"
	case PaymentStatusPartial:
		return "Thanh toán một phần"
	case PaymentStatusUnpaid:
		return "Chưa thanh toán"
	default:
		return string(s)
	}
}

// Material is a part consumed by a repair
type Material struct {
	MaterialName string          `json:"material_name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// Cost returns price times quantity
func (m Material) Cost() decimal.Decimal {
	return m.Price.Mul(m.Quantity)
}

// RepairOrder is a device repair ticket
type RepairOrder struct {
	shared.BaseEntity
	Code          string          `json:"code"`
	CreationDate  time.Time       `json:"creation_date"`
	CustomerName  string          `json:"customer_name"`
	DeviceName    string          `json:"device_name"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Total         decimal.Decimal `json:"total"`
	LaborCost     decimal.Decimal `json:"labor_cost"`
	Materials     []Material      `json:"materials_used"`
}

// NewRepairOrder validates and creates a repair order
func NewRepairOrder(code string, created time.Time, customer, device string, status PaymentStatus, total, labor decimal.Decimal, materials []Material) (*RepairOrder, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.Invalidf("repair code cannot be empty")
	}
	if created.IsZero() {
		return nil, shared.Invalidf("repair creation date is required")
	}
	if status == "" {
		status = PaymentStatusUnpaid
	}
	if !status.IsValid() {
		return nil, shared.Invalidf("unknown payment status %q", status)
	}
	if total.IsNegative() || labor.IsNegative() {
		return nil, shared.Invalidf("repair amounts cannot be negative")
	}
	for idx, m := range materials {
		if m.Price.IsNegative() || !m.Quantity.IsPositive() {
			return nil, shared.Invalidf("material %d: price must be >= 0 and quantity > 0", idx+1)
		}
	}

	return &RepairOrder{
		BaseEntity:    shared.NewBaseEntity(),
		Code:          code,
		CreationDate:  created,
		CustomerName:  strings.TrimSpace(customer),
		DeviceName:    strings.TrimSpace(device),
		PaymentStatus: status,
		Total:         total,
		LaborCost:     labor,
		Materials:     materials,
	}, nil
}

// MaterialCost returns the summed cost of consumed materials
func (r *RepairOrder) MaterialCost() decimal.Decimal {
	cost := decimal.Zero
	for _, m := range r.Materials {
		cost = cost.Add(m.Cost())
	}
	return cost
}

// RepairOrderRepository persists repair orders
type RepairOrderRepository interface {
	Create(ctx context.Context, order *RepairOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*RepairOrder, error)
	// FindByDateRange returns orders created within [start, end], oldest first
	FindByDateRange(ctx context.Context, start, end time.Time) ([]RepairOrder, error)
}
