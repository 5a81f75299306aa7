package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pinshop/backend/internal/domain/repair"
	"github.com/pinshop/backend/internal/domain/shared"
	"github.com/pinshop/backend/internal/infrastructure/persistence/models"
)

// GormRepairOrderRepository implements repair.RepairOrderRepository using GORM
type GormRepairOrderRepository struct {
	db *gorm.DB
}

// NewGormRepairOrderRepository creates a new GormRepairOrderRepository
func NewGormRepairOrderRepository(db *gorm.DB) *GormRepairOrderRepository {
	return &GormRepairOrderRepository{db: db}
}

// Create inserts the order together with its materials
func (r *GormRepairOrderRepository) Create(ctx context.Context, order *repair.RepairOrder) error {
	return r.db.WithContext(ctx).Create(models.RepairOrderModelFromDomain(order)).Error
}

// FindByID finds a repair order by its ID
func (r *GormRepairOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*repair.RepairOrder, error) {
	var model models.RepairOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Materials", orderedLines).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDateRange returns orders created within [start, end], oldest first.
// Payment status is not filtered.
func (r *GormRepairOrderRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]repair.RepairOrder, error) {
	var orderModels []models.RepairOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Materials", orderedLines).
		Where("creation_date >= ? AND creation_date <= ?", start.UTC(), end.UTC()).
		Order("creation_date ASC, created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]repair.RepairOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

var _ repair.RepairOrderRepository = (*GormRepairOrderRepository)(nil)
