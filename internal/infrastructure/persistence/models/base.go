package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pinshop/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// LineModel is the key of a child row owned by a header record
type LineModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Position int       `gorm:"not null;default:0"`
}

// All returns every model that owns a table, in dependency order
func All() []any {
	return []any{
		&SaleModel{},
		&SaleItemModel{},
		&RepairOrderModel{},
		&RepairMaterialModel{},
		&CashTransactionModel{},
		&ProductionOrderModel{},
	}
}
