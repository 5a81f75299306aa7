package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pinshop/backend/internal/domain/finance"
)

// CashTransactionModel is the persistence model for a cash book entry
type CashTransactionModel struct {
	BaseModel
	Date     time.Time               `gorm:"not null;index"`
	Type     finance.TransactionType `gorm:"type:varchar(20);not null;index"`
	Category finance.Category        `gorm:"type:varchar(50);not null;index"`
	Amount   decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	Contact  string                  `gorm:"type:varchar(200)"`
	Notes    string                  `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CashTransactionModel) TableName() string {
	return "cash_transactions"
}

// ToDomain converts the persistence model to a domain CashTransaction
func (m *CashTransactionModel) ToDomain() *finance.CashTransaction {
	return &finance.CashTransaction{
		BaseEntity: m.BaseModel.ToDomain(),
		Date:       m.Date,
		Type:       m.Type,
		Category:   m.Category,
		Amount:     m.Amount,
		Contact:    m.Contact,
		Notes:      m.Notes,
	}
}

// FromDomain populates the persistence model from a domain CashTransaction
func (m *CashTransactionModel) FromDomain(t *finance.CashTransaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.Date = t.Date.UTC()
	m.Type = t.Type
	m.Category = t.Category
	m.Amount = t.Amount
	m.Contact = t.Contact
	m.Notes = t.Notes
}

// CashTransactionModelFromDomain creates a new persistence model from a domain CashTransaction
func CashTransactionModelFromDomain(t *finance.CashTransaction) *CashTransactionModel {
	m := &CashTransactionModel{}
	m.FromDomain(t)
	return m
}
