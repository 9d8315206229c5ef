package repositories

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/kidstore/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, tx *gorm.DB, cartID string) ([]models.CartItem, error)
	GetByID(ctx context.Context, id string) (*models.CartItem, error)
	FindLine(ctx context.Context, cartID, productID, variantID string) (*models.CartItem, error)
	Increment(ctx context.Context, cartID, productID, variantID string, qty int) error
	UpdateQuantity(ctx context.Context, id string, qty int) error
	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, cartID string, ids []string) error
}

type cartItemRepository struct {
	db *gorm.DB
}

func NewCartItemRepository(db *gorm.DB) CartItemRepository {
	return &cartItemRepository{db}
}

func (r *cartItemRepository) ListByCartID(ctx context.Context, tx *gorm.DB, cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := conn(r.db, tx).WithContext(ctx).
		Preload("Product.Images").
		Preload("Product.Variants").
		Where("cart_id = ?", cartID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, nil
}

func (r *cartItemRepository) GetByID(ctx context.Context, id string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &item, nil
}

func (r *cartItemRepository) FindLine(ctx context.Context, cartID, productID, variantID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ? AND variant_id = ?", cartID, productID, variantID).
		First(&item).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}
	return &item, nil
}

// Increment inserts the line or adds qty to the existing one in a single
// statement keyed by the (cart, product, variant) unique index.
func (r *cartItemRepository) Increment(ctx context.Context, cartID, productID, variantID string, qty int) error {
	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  qty,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "variant_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", qty),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return nil
}

func (r *cartItemRepository) UpdateQuantity(ctx context.Context, id string, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", qty).Error
}

func (r *cartItemRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", id).Error
}

func (r *cartItemRepository) DeleteByIDs(ctx context.Context, tx *gorm.DB, cartID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return conn(r.db, tx).WithContext(ctx).
		Where("cart_id = ? AND id IN ?", cartID, ids).
		Delete(&models.CartItem{}).Error
}
