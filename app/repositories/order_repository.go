package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderFilter struct {
	UserID string
	Status models.OrderStatus
	From   time.Time
	To     time.Time
	Page   Page
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ExistsByNumber(ctx context.Context, tx *gorm.DB, orderNumber string) (bool, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	ListForExport(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error

	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
	PaidRevenue(ctx context.Context) (decimal.Decimal, error)
	Recent(ctx context.Context, limit int) ([]models.Order, error)
}

type gormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

func withOrderDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Payment")
}

func (r *gormOrderRepository) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Items", "Payment").Create(order).Error
}

func (r *gormOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := withOrderDetails(r.db.WithContext(ctx)).First(&order, "id = ?", id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &order, nil
}

func (r *gormOrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := withOrderDetails(r.db.WithContext(ctx)).First(&order, "order_number = ?", orderNumber).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &order, nil
}

func (r *gormOrderRepository) ExistsByNumber(ctx context.Context, tx *gorm.DB, orderNumber string) (bool, error) {
	var count int64
	err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Order{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error
	return count > 0, err
}

func (r *gormOrderRepository) filtered(ctx context.Context, filter OrderFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To)
	}
	return query.Session(&gorm.Session{})
}

func (r *gormOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	page := filter.Page.Normalize()
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	err := withOrderDetails(query).
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

func (r *gormOrderRepository) ListForExport(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	var orders []models.Order
	err := withOrderDetails(r.filtered(ctx, filter)).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for export: %w", err)
	}
	return orders, nil
}

func (r *gormOrderRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id string, fields map[string]interface{}) error {
	result := conn(r.db, tx).WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update order: %w", result.Error)
	}
	return nil
}

func (r *gormOrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	counts := make(map[models.OrderStatus]int64, len(models.OrderStatuses))
	for _, status := range models.OrderStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// PaidRevenue sums totals of orders whose payment has been collected.
func (r *gormOrderRepository) PaidRevenue(ctx context.Context) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentStatusPaid).
		Pluck("total", &totals).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return decimal.Sum(decimal.Zero, totals...), nil
}

func (r *gormOrderRepository) Recent(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
