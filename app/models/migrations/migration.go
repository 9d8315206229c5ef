package migrations

import (
	"github.com/Rakhulsr/kidstore/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.PaymentIntent{},
		&models.WishlistItem{},
		&models.HomeSection{},
		&models.HomeSectionItem{},
	)
}
