package production

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pinshop/backend/internal/domain/shared"
)

// Status of a production order
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsCancelled reports the cancelled sentinel. Legacy rows may carry it in
// upper case.
func (s Status) IsCancelled() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(StatusCancelled))
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// ProductionOrder assembles finished goods (battery packs and the like)
type ProductionOrder struct {
	shared.BaseEntity
	Code             string          `json:"code"`
	CreationDate     time.Time       `json:"creation_date"`
	ProductName      string          `json:"product_name"`
	QuantityProduced decimal.Decimal `json:"quantity_produced"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	Status           Status          `json:"status"`
}

// NewProductionOrder validates and creates a production order
func NewProductionOrder(code string, created time.Time, product string, qty, totalCost decimal.Decimal, status Status) (*ProductionOrder, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.Invalidf("production code cannot be empty")
	}
	if created.IsZero() {
		return nil, shared.Invalidf("production creation date is required")
	}
	if strings.TrimSpace(product) == "" {
		return nil, shared.Invalidf("product name cannot be empty")
	}
	if !qty.IsPositive() {
		return nil, shared.Invalidf("quantity produced must be positive")
	}
	if totalCost.IsNegative() {
		return nil, shared.Invalidf("total cost cannot be negative")
	}
	if status == "" {
		status = StatusPending
	}
	if !status.IsValid() {
		return nil, shared.Invalidf("unknown production status %q", status)
	}

	return &ProductionOrder{
		BaseEntity:       shared.NewBaseEntity(),
		Code:             code,
		CreationDate:     created,
		ProductName:      strings.TrimSpace(product),
		QuantityProduced: qty,
		TotalCost:        totalCost,
		Status:           status,
	}, nil
}

// Cancel marks the order cancelled
func (o *ProductionOrder) Cancel() error {
	if o.Status.IsCancelled() {
		return shared.NewDomainError(shared.ErrInvalidState.Code, fmt.Sprintf("production order %s is already cancelled", o.Code))
	}
	o.Status = StatusCancelled
	o.Touch()
	return nil
}

// ProductionOrderRepository persists production orders
type ProductionOrderRepository interface {
	Create(ctx context.Context, order *ProductionOrder) error
	Save(ctx context.Context, order *ProductionOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*ProductionOrder, error)
	// FindByDateRange returns orders of any status created within [start, end]
	FindByDateRange(ctx context.Context, start, end time.Time) ([]ProductionOrder, error)
}
