package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WishlistItem struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_wishlist_pair" json:"userId"`
	ProductID string    `gorm:"size:36;not null;uniqueIndex:idx_wishlist_pair" json:"productId"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (w *WishlistItem) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return
}
