package repositories

import (
	"context"

	"github.com/Rakhulsr/kidstore/app/models"
	"gorm.io/gorm"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, tx *gorm.DB, items []models.OrderItem) error
	ListByOrderID(ctx context.Context, orderID string) ([]models.OrderItem, error)
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) CreateBulk(ctx context.Context, tx *gorm.DB, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return conn(r.db, tx).WithContext(ctx).Create(&items).Error
}

func (r *orderItemRepository) ListByOrderID(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	return items, err
}
