package finance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/pinshop/backend/internal/domain/shared"
)

// TransactionType is the direction of a cash book entry
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// IsValid checks if the type is a known TransactionType
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// Category is a free-form cash book category. Only the values below are
// recognised by reporting; anything else is stored as entered.
type Category string

const (
	CategoryInventoryPurchase Category = "inventory_purchase" // Nhập hàng
	CategoryOtherIncome       Category = "other_income"       // Thu khác
	CategoryOtherExpense      Category = "other_expense"      // Chi khác
	CategoryPayroll           Category = "payroll"            // Lương
	CategoryRent              Category = "rent"               // Thuê mặt bằng
	CategoryUtilities         Category = "utilities"          // Điện nước
	CategoryLogistics         Category = "logistics"          // Vận chuyển
)

var folder = cases.Fold()

// NormalizeCategory canonicalises user input: NFC, case folded, trimmed, with
// spaces and hyphens mapped to underscores. "Other Income" and "other-income"
// both become other_income.
func NormalizeCategory(raw string) Category {
	s := norm.NFC.String(strings.TrimSpace(raw))
	s = folder.String(s)
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, s)
	return Category(s)
}

// IsKnown returns true for categories that reporting classifies
func (c Category) IsKnown() bool {
	switch c {
	case CategoryInventoryPurchase, CategoryOtherIncome, CategoryOtherExpense,
		CategoryPayroll, CategoryRent, CategoryUtilities, CategoryLogistics:
		return true
	}
	return false
}

// IsOperatingExpense returns true for categories counted as operating expenses
func (c Category) IsOperatingExpense() bool {
	switch c {
	case CategoryOtherExpense, CategoryPayroll, CategoryRent, CategoryUtilities, CategoryLogistics:
		return true
	}
	return false
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// DisplayName returns the Vietnamese label
func (c Category) DisplayName() string {
	switch c {
	case CategoryInventoryPurchase:
		return "Nhập hàng"
	case CategoryOtherIncome:
		return "Thu khác"
	case CategoryOtherExpense:
		return "Chi khác"
	case CategoryPayroll:
		return "Lương nhân viên"
	case CategoryRent:
		return "Thuê mặt bằng"
	case CategoryUtilities:
		return "Điện nước"
	case CategoryLogistics:
		return "Vận chuyển"
	default:
		return string(c)
	}
}

// CashTransaction is one cash book entry. Amount is kept exactly as entered;
// some clients record expenses as negative numbers, others as magnitudes.
type CashTransaction struct {
	shared.BaseEntity
	Date     time.Time       `json:"date"`
	Type     TransactionType `json:"type"`
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Contact  string          `json:"contact"`
	Notes    string          `json:"notes"`
}

// NewCashTransaction validates and creates a cash book entry
func NewCashTransaction(date time.Time, txType TransactionType, category string, amount decimal.Decimal, contact, notes string) (*CashTransaction, error) {
	if date.IsZero() {
		return nil, shared.Invalidf("transaction date is required")
	}
	if !txType.IsValid() {
		return nil, shared.Invalidf("unknown transaction type %q", txType)
	}
	cat := NormalizeCategory(category)
	if cat == "" {
		return nil, shared.Invalidf("transaction category cannot be empty")
	}
	if amount.IsZero() {
		return nil, shared.Invalidf("transaction amount cannot be zero")
	}
	if len(notes) > 500 {
		return nil, shared.Invalidf("notes cannot exceed 500 characters")
	}

	return &CashTransaction{
		BaseEntity: shared.NewBaseEntity(),
		Date:       date,
		Type:       txType,
		Category:   cat,
		Amount:     amount,
		Contact:    strings.TrimSpace(contact),
		Notes:      notes,
	}, nil
}

// Magnitude returns |Amount|
func (t *CashTransaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}

// CashTransactionRepository persists cash book entries
type CashTransactionRepository interface {
	Create(ctx context.Context, tx *CashTransaction) error
	// CreateBatch inserts all entries or none
	CreateBatch(ctx context.Context, txs []*CashTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*CashTransaction, error)
	// FindByDateRange returns entries dated within [start, end], oldest first
	FindByDateRange(ctx context.Context, start, end time.Time) ([]CashTransaction, error)
}
