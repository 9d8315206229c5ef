package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is unique per (cart, product, variant). VariantID is "" for the
// plain product so the composite index also covers variant-less lines.
type CartItem struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	CartID    string    `gorm:"size:36;not null;uniqueIndex:idx_cart_line" json:"cartId"`
	ProductID string    `gorm:"size:36;not null;uniqueIndex:idx_cart_line" json:"productId"`
	VariantID string    `gorm:"size:36;not null;uniqueIndex:idx_cart_line" json:"variantId"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ci *CartItem) BeforeCreate(tx *gorm.DB) (err error) {
	if ci.ID == "" {
		ci.ID = uuid.New().String()
	}
	return
}
