package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pinshop/backend/internal/domain/trade"
)

// SaleModel is the persistence model for a sale
type SaleModel struct {
	BaseModel
	Code          string          `gorm:"type:varchar(50);not null;index"`
	Date          time.Time       `gorm:"not null;index"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Customer      string          `gorm:"type:varchar(200)"`
	PaymentMethod string          `gorm:"type:varchar(30)"`
	Items         []SaleItemModel `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel is one line of a sale
type SaleItemModel struct {
	LineModel
	SaleID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain Sale
func (m *SaleModel) ToDomain() *trade.Sale {
	items := make([]trade.SaleItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = trade.SaleItem{
			Name:         it.Name,
			Quantity:     it.Quantity,
			SellingPrice: it.SellingPrice,
			CostPrice:    it.CostPrice,
		}
	}
	return &trade.Sale{
		BaseEntity:    m.BaseModel.ToDomain(),
		Code:          m.Code,
		Date:          m.Date,
		Total:         m.Total,
		Customer:      m.Customer,
		PaymentMethod: m.PaymentMethod,
		Items:         items,
	}
}

// FromDomain populates the persistence model from a domain Sale
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Code = s.Code
	m.Date = s.Date.UTC()
	m.Total = s.Total
	m.Customer = s.Customer
	m.PaymentMethod = s.PaymentMethod
	m.Items = make([]SaleItemModel, len(s.Items))
	for i, it := range s.Items {
		m.Items[i] = SaleItemModel{
			LineModel:    LineModel{ID: uuid.New(), Position: i},
			SaleID:       s.ID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			SellingPrice: it.SellingPrice,
			CostPrice:    it.CostPrice,
		}
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}
