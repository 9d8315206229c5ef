package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem holds values copied from the product at purchase time and is not
// associated with the live Product row.
type OrderItem struct {
	ID           string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	OrderID      string          `gorm:"size:36;not null;index" json:"orderId"`
	ProductID    string          `gorm:"size:36;not null;index" json:"productId"`
	ProductName  string          `gorm:"size:255;not null" json:"productName"`
	ProductSlug  string          `gorm:"size:255;not null" json:"productSlug"`
	ProductImage string          `gorm:"size:500" json:"productImage"`
	VariantID    string          `gorm:"size:36" json:"variantId,omitempty"`
	VariantName  string          `gorm:"size:100" json:"variantName,omitempty"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"unitPrice"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"subtotal"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (oi *OrderItem) BeforeCreate(tx *gorm.DB) (err error) {
	if oi.ID == "" {
		oi.ID = uuid.New().String()
	}
	return
}
