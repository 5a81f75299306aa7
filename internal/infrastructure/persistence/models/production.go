package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pinshop/backend/internal/domain/production"
)

// ProductionOrderModel is the persistence model for a production order
type ProductionOrderModel struct {
	BaseModel
	Code             string            `gorm:"type:varchar(50);not null;index"`
	CreationDate     time.Time         `gorm:"not null;index"`
	ProductName      string            `gorm:"type:varchar(200);not null"`
	QuantityProduced decimal.Decimal   `gorm:"type:decimal(18,3);not null"`
	TotalCost        decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Status           production.Status `gorm:"type:varchar(20);not null;default:'pending';index"`
}

// TableName returns the table name for GORM
func (ProductionOrderModel) TableName() string {
	return "production_orders"
}

// ToDomain converts the persistence model to a domain ProductionOrder
func (m *ProductionOrderModel) ToDomain() *production.ProductionOrder {
	return &production.ProductionOrder{
		BaseEntity:       m.BaseModel.ToDomain(),
		Code:             m.Code,
		CreationDate:     m.CreationDate,
		ProductName:      m.ProductName,
		QuantityProduced: m.QuantityProduced,
		TotalCost:        m.TotalCost,
		Status:           m.Status,
	}
}

// FromDomain populates the persistence model from a domain ProductionOrder
func (m *ProductionOrderModel) FromDomain(o *production.ProductionOrder) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.Code = o.Code
	m.CreationDate = o.CreationDate.UTC()
	m.ProductName = o.ProductName
	m.QuantityProduced = o.QuantityProduced
	m.TotalCost = o.TotalCost
	m.Status = o.Status
}

// ProductionOrderModelFromDomain creates a new persistence model from a domain ProductionOrder
func ProductionOrderModelFromDomain(o *production.ProductionOrder) *ProductionOrderModel {
	m := &ProductionOrderModel{}
	m.FromDomain(o)
	return m
}
