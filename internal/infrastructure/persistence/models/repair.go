package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pinshop/backend/internal/domain/repair"
)

// RepairOrderModel is the persistence model for a repair order
type RepairOrderModel struct {
	BaseModel
	Code          string                `gorm:"type:varchar(50);not null;index"`
	CreationDate  time.Time             `gorm:"not null;index"`
	CustomerName  string                `gorm:"type:varchar(200)"`
	DeviceName    string                `gorm:"type:varchar(200)"`
	PaymentStatus repair.PaymentStatus  `gorm:"type:varchar(20);not null;default:'unpaid'"`
	Total         decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	LaborCost     decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Materials     []RepairMaterialModel `gorm:"foreignKey:RepairOrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (RepairOrderModel) TableName() string {
	return "repair_orders"
}

// RepairMaterialModel is a part consumed by a repair
type RepairMaterialModel struct {
	LineModel
	RepairOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialName  string          `gorm:"type:varchar(200);not null"`
	Price         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,3);not null"`
}

// TableName returns the table name for GORM
func (RepairMaterialModel) TableName() string {
	return "repair_materials"
}

// ToDomain converts the persistence model to a domain RepairOrder
func (m *RepairOrderModel) ToDomain() *repair.RepairOrder {
	materials := make([]repair.Material, len(m.Materials))
	for i, mat := range m.Materials {
		materials[i] = repair.Material{
			MaterialName: mat.MaterialName,
			Price:        mat.Price,
			Quantity:     mat.Quantity,
		}
	}
	return &repair.RepairOrder{
		BaseEntity:    m.BaseModel.ToDomain(),
		Code:          m.Code,
		CreationDate:  m.CreationDate,
		CustomerName:  m.CustomerName,
		DeviceName:    m.DeviceName,
		PaymentStatus: m.PaymentStatus,
		Total:         m.Total,
		LaborCost:     m.LaborCost,
		Materials:     materials,
	}
}

// FromDomain populates the persistence model from a domain RepairOrder
func (m *RepairOrderModel) FromDomain(r *repair.RepairOrder) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Code = r.Code
	m.CreationDate = r.CreationDate.UTC()
	m.CustomerName = r.CustomerName
	m.DeviceName = r.DeviceName
	m.PaymentStatus = r.PaymentStatus
	m.Total = r.Total
	m.LaborCost = r.LaborCost
	m.Materials = make([]RepairMaterialModel, len(r.Materials))
	for i, mat := range r.Materials {
		m.Materials[i] = RepairMaterialModel{
			LineModel:     LineModel{ID: uuid.New(), Position: i},
			RepairOrderID: r.ID,
			MaterialName:  mat.MaterialName,
			Price:         mat.Price,
			Quantity:      mat.Quantity,
		}
	}
}

// RepairOrderModelFromDomain creates a new persistence model from a domain RepairOrder
func RepairOrderModelFromDomain(r *repair.RepairOrder) *RepairOrderModel {
	m := &RepairOrderModel{}
	m.FromDomain(r)
	return m
}
