package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pinshop/backend/internal/domain/finance"
	"github.com/pinshop/backend/internal/domain/shared"
	"github.com/pinshop/backend/internal/infrastructure/persistence/models"
)

// GormCashTransactionRepository implements finance.CashTransactionRepository using GORM
type GormCashTransactionRepository struct {
	db *gorm.DB
}

// NewGormCashTransactionRepository creates a new GormCashTransactionRepository
func NewGormCashTransactionRepository(db *gorm.DB) *GormCashTransactionRepository {
	return &GormCashTransactionRepository{db: db}
}

// Create inserts a cash book entry
func (r *GormCashTransactionRepository) Create(ctx context.Context, tx *finance.CashTransaction) error {
	return r.db.WithContext(ctx).Create(models.CashTransactionModelFromDomain(tx)).Error
}

// CreateBatch inserts several entries in a single transaction
func (r *GormCashTransactionRepository) CreateBatch(ctx context.Context, txs []*finance.CashTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	txModels := make([]*models.CashTransactionModel, len(txs))
	for i, tx := range txs {
		txModels[i] = models.CashTransactionModelFromDomain(tx)
	}
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return db.CreateInBatches(txModels, 200).Error
	})
}

// FindByID finds a cash book entry by its ID
func (r *GormCashTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CashTransaction, error) {
	var model models.CashTransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDateRange returns entries dated within [start, end], oldest first
func (r *GormCashTransactionRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]finance.CashTransaction, error) {
	var txModels []models.CashTransactionModel
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", start.UTC(), end.UTC()).
		Order("date ASC, created_at ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	txs := make([]finance.CashTransaction, len(txModels))
	for i := range txModels {
		txs[i] = *txModels[i].ToDomain()
	}
	return txs, nil
}

var _ finance.CashTransactionRepository = (*GormCashTransactionRepository)(nil)
