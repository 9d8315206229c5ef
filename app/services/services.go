package services

import (
	"errors"

	"github.com/Rakhulsr/kidstore/app/repositories"
	"github.com/Rakhulsr/kidstore/app/services/gateway"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
	"gorm.io/gorm"
)

// Repositories groups every repository so services and routes share one set.
type Repositories struct {
	Users        repositories.UserRepository
	Carts        repositories.CartRepository
	CartItems    repositories.CartItemRepository
	Products     repositories.ProductRepository
	Categories   repositories.CategoryRepository
	Addresses    repositories.AddressRepository
	Orders       repositories.OrderRepository
	OrderItems   repositories.OrderItemRepository
	Payments     repositories.PaymentRepository
	Wishlist     repositories.WishlistRepository
	HomeSections repositories.HomeSectionRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:        repositories.NewUserRepository(db),
		Carts:        repositories.NewCartRepository(db),
		CartItems:    repositories.NewCartItemRepository(db),
		Products:     repositories.NewProductRepository(db),
		Categories:   repositories.NewCategoryRepository(db),
		Addresses:    repositories.NewGormAddressRepository(db),
		Orders:       repositories.NewOrderRepository(db),
		OrderItems:   repositories.NewOrderItemRepository(db),
		Payments:     repositories.NewPaymentRepository(db),
		Wishlist:     repositories.NewWishlistRepository(db),
		HomeSections: repositories.NewHomeSectionRepository(db),
	}
}

// persistence leaves taxonomy errors alone and classifies the rest as
// storage failures.
func persistence(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("record not found")
	}
	return apperr.Persistence(err)
}

func gatewayError(err error) error {
	switch {
	case errors.Is(err, gateway.ErrMisconfigured):
		return apperr.Wrap(apperr.KindGatewayMisconfigured, "payment gateway is not configured", err)
	case errors.Is(err, gateway.ErrUnsupportedAmount):
		return apperr.Wrap(apperr.KindValidationFailed, "order total cannot be charged online, choose cash on delivery", err)
	case errors.Is(err, gateway.ErrVerificationFailed):
		return apperr.Wrap(apperr.KindPaymentVerificationFailed, "payment verification failed", err)
	}
	return apperr.Wrap(apperr.KindGateway, "payment gateway error", err)
}
