package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID           string     `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Slug         string     `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	Description  string     `gorm:"type:text" json:"description"`
	ImageURL     string     `gorm:"size:500" json:"imageUrl"`
	ParentID     *string    `gorm:"size:36;index" json:"parentId"`
	Children     []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	IsActive     bool       `gorm:"not null" json:"isActive"`
	DisplayOrder int        `gorm:"not null" json:"displayOrder"`
	Products     []Product  `gorm:"many2many:product_categories;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
