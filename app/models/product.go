package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID             string              `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Name           string              `gorm:"size:255;not null" json:"name"`
	Slug           string              `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Description    string              `gorm:"type:text" json:"description"`
	Sku            string              `gorm:"size:100;index" json:"sku"`
	Price          decimal.Decimal     `gorm:"type:decimal(16,2);not null" json:"price"`
	CompareAtPrice decimal.NullDecimal `gorm:"type:decimal(16,2)" json:"compareAtPrice"`
	Quantity       int                 `gorm:"not null" json:"quantity"`
	IsActive       bool                `gorm:"not null;index" json:"isActive"`
	Categories     []Category          `gorm:"many2many:product_categories;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
	Images         []ProductImage      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Variants       []ProductVariant    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// HasDiscount reports whether compareAtPrice should be shown struck through.
func (p *Product) HasDiscount() bool {
	return p.CompareAtPrice.Valid && p.CompareAtPrice.Decimal.GreaterThan(p.Price)
}

// PrimaryImage returns the url of the lowest-positioned image, or "".
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	images := make([]ProductImage, len(p.Images))
	copy(images, p.Images)
	sort.SliceStable(images, func(i, j int) bool { return images[i].Position < images[j].Position })
	return images[0].URL
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

type ProductImage struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	ProductID string    `gorm:"size:36;not null;index" json:"productId"`
	URL       string    `gorm:"size:500;not null" json:"url"`
	AltText   string    `gorm:"size:255" json:"altText"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

func (pi *ProductImage) BeforeCreate(tx *gorm.DB) (err error) {
	if pi.ID == "" {
		pi.ID = uuid.New().String()
	}
	return
}

type ProductVariant struct {
	ID            string              `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	ProductID     string              `gorm:"size:36;not null;index" json:"productId"`
	Name          string              `gorm:"size:100;not null" json:"name"`
	Sku           string              `gorm:"size:100" json:"sku"`
	PriceOverride decimal.NullDecimal `gorm:"type:decimal(16,2)" json:"priceOverride"`
	Quantity      int                 `gorm:"not null" json:"quantity"`
	IsActive      bool                `gorm:"not null" json:"isActive"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// UnitPrice is the variant override when set, else the parent price.
func (v *ProductVariant) UnitPrice(parent decimal.Decimal) decimal.Decimal {
	if v.PriceOverride.Valid {
		return v.PriceOverride.Decimal
	}
	return parent
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}
