package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pinshop/backend/internal/domain/finance"
	"github.com/pinshop/backend/internal/domain/production"
	"github.com/pinshop/backend/internal/domain/repair"
	"github.com/pinshop/backend/internal/domain/trade"
	csvimport "github.com/pinshop/backend/internal/infrastructure/import"
)

// SaleItemRequest is one line of a new sale
type SaleItemRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Quantity     decimal.Decimal `json:"quantity"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
}

// CreateSaleRequest records a point-of-sale ticket. A zero total is replaced
// by the sum of the lines.
type CreateSaleRequest struct {
	Code          string            `json:"code" binding:"required,min=1,max=50"`
	Date          time.Time         `json:"date" binding:"required"`
	Total         decimal.Decimal   `json:"total"`
	Customer      string            `json:"customer" binding:"max=200"`
	PaymentMethod string            `json:"payment_method" binding:"max=30"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// MaterialRequest is a part used by a repair
type MaterialRequest struct {
	MaterialName string          `json:"material_name" binding:"required,min=1,max=200"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// CreateRepairOrderRequest records a repair ticket
type CreateRepairOrderRequest struct {
	Code          string            `json:"code" binding:"required,min=1,max=50"`
	CreationDate  time.Time         `json:"creation_date" binding:"required"`
	CustomerName  string            `json:"customer_name" binding:"max=200"`
	DeviceName    string            `json:"device_name" binding:"max=200"`
	PaymentStatus string            `json:"payment_status" binding:"omitempty,oneof=paid partial unpaid"`
	Total         decimal.Decimal   `json:"total"`
	LaborCost     decimal.Decimal   `json:"labor_cost"`
	Materials     []MaterialRequest `json:"materials_used" binding:"dive"`
}

// CreateCashTransactionRequest records a cash book entry
type CreateCashTransactionRequest struct {
	Date     time.Time       `json:"date" binding:"required"`
	Type     string          `json:"type" binding:"required,oneof=income expense"`
	Category string          `json:"category" binding:"required,min=1,max=50"`
	Amount   decimal.Decimal `json:"amount"`
	Contact  string          `json:"contact" binding:"max=200"`
	Notes    string          `json:"notes" binding:"max=500"`
}

// CreateProductionOrderRequest records an assembly run
type CreateProductionOrderRequest struct {
	Code             string          `json:"code" binding:"required,min=1,max=50"`
	CreationDate     time.Time       `json:"creation_date" binding:"required"`
	ProductName      string          `json:"product_name" binding:"required,min=1,max=200"`
	QuantityProduced decimal.Decimal `json:"quantity_produced"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	Status           string          `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
}

// RangeQuery selects records for the list screens. Both ends are local
// calendar days in YYYY-MM-DD and inclusive.
type RangeQuery struct {
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"required,datetime=2006-01-02"`
}

// ImportQuery controls a cash book import
type ImportQuery struct {
	DryRun bool `form:"dry_run"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID            uuid.UUID        `json:"id"`
	Code          string           `json:"code"`
	Date          time.Time        `json:"date"`
	Total         decimal.Decimal  `json:"total"`
	Cost          decimal.Decimal  `json:"cost"`
	Customer      string           `json:"customer"`
	PaymentMethod string           `json:"payment_method"`
	Items         []trade.SaleItem `json:"items"`
	CreatedAt     time.Time        `json:"created_at"`
}

// RepairOrderResponse represents a repair order in API responses
type RepairOrderResponse struct {
	ID            uuid.UUID         `json:"id"`
	Code          string            `json:"code"`
	CreationDate  time.Time         `json:"creation_date"`
	CustomerName  string            `json:"customer_name"`
	DeviceName    string            `json:"device_name"`
	PaymentStatus string            `json:"payment_status"`
	Total         decimal.Decimal   `json:"total"`
	LaborCost     decimal.Decimal   `json:"labor_cost"`
	MaterialCost  decimal.Decimal   `json:"material_cost"`
	Materials     []repair.Material `json:"materials_used"`
	CreatedAt     time.Time         `json:"created_at"`
}

// CashTransactionResponse represents a cash book entry in API responses
type CashTransactionResponse struct {
	ID           uuid.UUID       `json:"id"`
	Date         time.Time       `json:"date"`
	Type         string          `json:"type"`
	Category     string          `json:"category"`
	CategoryName string          `json:"category_name"`
	Amount       decimal.Decimal `json:"amount"`
	Contact      string          `json:"contact"`
	Notes        string          `json:"notes"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ProductionOrderResponse represents a production order in API responses
type ProductionOrderResponse struct {
	ID               uuid.UUID       `json:"id"`
	Code             string          `json:"code"`
	CreationDate     time.Time       `json:"creation_date"`
	ProductName      string          `json:"product_name"`
	QuantityProduced decimal.Decimal `json:"quantity_produced"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	Status           string          `json:"status"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToSaleResponse converts a domain Sale to its response
func ToSaleResponse(s *trade.Sale) SaleResponse {
	return SaleResponse{
		ID:            s.ID,
		Code:          s.Code,
		Date:          s.Date,
		Total:         s.Total,
		Cost:          s.Cost(),
		Customer:      s.Customer,
		PaymentMethod: s.PaymentMethod,
		Items:         s.Items,
		CreatedAt:     s.CreatedAt,
	}
}

// ToRepairOrderResponse converts a domain RepairOrder to its response
func ToRepairOrderResponse(r *repair.RepairOrder) RepairOrderResponse {
	return RepairOrderResponse{
		ID:            r.ID,
		Code:          r.Code,
		CreationDate:  r.CreationDate,
		CustomerName:  r.CustomerName,
		DeviceName:    r.DeviceName,
		PaymentStatus: r.PaymentStatus.String(),
		Total:         r.Total,
		LaborCost:     r.LaborCost,
		MaterialCost:  r.MaterialCost(),
		Materials:     r.Materials,
		CreatedAt:     r.CreatedAt,
	}
}

// ToCashTransactionResponse converts a domain CashTransaction to its response
func ToCashTransactionResponse(t *finance.CashTransaction) CashTransactionResponse {
	return CashTransactionResponse{
		ID:           t.ID,
		Date:         t.Date,
		Type:         t.Type.String(),
		Category:     t.Category.String(),
		CategoryName: t.Category.DisplayName(),
		Amount:       t.Amount,
		Contact:      t.Contact,
		Notes:        t.Notes,
		CreatedAt:    t.CreatedAt,
	}
}

// ToProductionOrderResponse converts a domain ProductionOrder to its response
func ToProductionOrderResponse(o *production.ProductionOrder) ProductionOrderResponse {
	return ProductionOrderResponse{
		ID:               o.ID,
		Code:             o.Code,
		CreationDate:     o.CreationDate,
		ProductName:      o.ProductName,
		QuantityProduced: o.QuantityProduced,
		TotalCost:        o.TotalCost,
		Status:           o.Status.String(),
		UpdatedAt:        o.UpdatedAt,
	}
}

func toResponses[T, R any](items []T, convert func(*T) R) []R {
	out := make([]R, len(items))
	for i := range items {
		out[i] = convert(&items[i])
	}
	return out
}

// ImportCashBookResponse reports the outcome of a cash book import. Nothing
// is imported when ErrorRows is non-zero.
type ImportCashBookResponse struct {
	TotalRows    int                  `json:"total_rows"`
	ValidRows    int                  `json:"valid_rows"`
	ImportedRows int                  `json:"imported_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
	DryRun       bool                 `json:"dry_run"`
}
