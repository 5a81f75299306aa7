package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pinshop/backend/internal/domain/production"
	"github.com/pinshop/backend/internal/domain/shared"
	"github.com/pinshop/backend/internal/infrastructure/persistence/models"
)

// GormProductionOrderRepository implements production.ProductionOrderRepository using GORM
type GormProductionOrderRepository struct {
	db *gorm.DB
}

// NewGormProductionOrderRepository creates a new GormProductionOrderRepository
func NewGormProductionOrderRepository(db *gorm.DB) *GormProductionOrderRepository {
	return &GormProductionOrderRepository{db: db}
}

// Create inserts a production order
func (r *GormProductionOrderRepository) Create(ctx context.Context, order *production.ProductionOrder) error {
	return r.db.WithContext(ctx).Create(models.ProductionOrderModelFromDomain(order)).Error
}

// Save updates an existing production order
func (r *GormProductionOrderRepository) Save(ctx context.Context, order *production.ProductionOrder) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductionOrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":            order.Status,
			"total_cost":        order.TotalCost,
			"quantity_produced": order.QuantityProduced,
			"product_name":      order.ProductName,
			"updated_at":        order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a production order by its ID
func (r *GormProductionOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.ProductionOrder, error) {
	var model models.ProductionOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDateRange returns orders of any status created within [start, end]
func (r *GormProductionOrderRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]production.ProductionOrder, error) {
	var orderModels []models.ProductionOrderModel
	if err := r.db.WithContext(ctx).
		Where("creation_date >= ? AND creation_date <= ?", start.UTC(), end.UTC()).
		Order("creation_date ASC, created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]production.ProductionOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

var _ production.ProductionOrderRepository = (*GormProductionOrderRepository)(nil)
