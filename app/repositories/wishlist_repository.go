package repositories

import (
	"context"

	"github.com/Rakhulsr/kidstore/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistRepository interface {
	List(ctx context.Context, userID string) ([]models.WishlistItem, error)
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db}
}

func (r *wishlistRepository) List(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Product.Images").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// Add is a no-op when the product is already wishlisted.
func (r *wishlistRepository) Add(ctx context.Context, userID, productID string) error {
	item := models.WishlistItem{UserID: userID, ProductID: productID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&item).Error
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error
}
