package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pinshop/backend/internal/domain/shared"
	"github.com/pinshop/backend/internal/domain/trade"
	"github.com/pinshop/backend/internal/infrastructure/persistence/models"
)

// GormSaleRepository implements trade.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create inserts the sale together with its items
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	return r.db.WithContext(ctx).Create(models.SaleModelFromDomain(sale)).Error
}

// FindByID finds a sale by its ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedLines).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDateRange returns sales dated within [start, end], oldest first
func (r *GormSaleRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]trade.Sale, error) {
	var saleModels []models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedLines).
		Where("date >= ? AND date <= ?", start.UTC(), end.UTC()).
		Order("date ASC, created_at ASC").
		Find(&saleModels).Error; err != nil {
		return nil, err
	}
	sales := make([]trade.Sale, len(saleModels))
	for i := range saleModels {
		sales[i] = *saleModels[i].ToDomain()
	}
	return sales, nil
}

var _ trade.SaleRepository = (*GormSaleRepository)(nil)
