package repositories

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/kidstore/app/models"
	"gorm.io/gorm"
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID string) (*models.Cart, error)
	FindByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Cart, error)
	GetCartItemCount(ctx context.Context, cartID string) (int, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db}
}

// GetOrCreateByUserID returns the user's cart, creating it on first use. A
// concurrent creator losing the unique race re-reads the winner's row.
func (r *cartRepository) GetOrCreateByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := r.FindByUserID(ctx, nil, userID)
	if err != nil || cart != nil {
		return cart, err
	}

	cart = &models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		if IsDuplicateKey(err) {
			return r.FindByUserID(ctx, nil, userID)
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

func (r *cartRepository) FindByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := conn(r.db, tx).WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &cart, nil
}

func (r *cartRepository) GetCartItemCount(ctx context.Context, cartID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ?", cartID).
		Count(&count).Error

	return int(count), err
}
