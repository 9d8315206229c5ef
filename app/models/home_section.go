package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SectionLayout string

const (
	LayoutGrid      SectionLayout = "GRID"
	LayoutCarousel  SectionLayout = "CAROUSEL"
	LayoutTwoColumn SectionLayout = "TWO_COLUMN"
	LayoutFullWidth SectionLayout = "FULL_WIDTH"
)

func (l SectionLayout) Valid() bool {
	switch l {
	case LayoutGrid, LayoutCarousel, LayoutTwoColumn, LayoutFullWidth:
		return true
	}
	return false
}

type HomeSection struct {
	ID           string            `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	Title        string            `gorm:"size:150;not null" json:"title"`
	Subtitle     string            `gorm:"size:255" json:"subtitle"`
	Layout       SectionLayout     `gorm:"size:20;not null" json:"layout"`
	DisplayOrder int               `gorm:"not null" json:"displayOrder"`
	IsActive     bool              `gorm:"not null" json:"isActive"`
	Items        []HomeSectionItem `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func (s *HomeSection) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}

type HomeSectionItem struct {
	ID           string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	SectionID    string    `gorm:"size:36;not null;index" json:"sectionId"`
	ImageURL     string    `gorm:"size:500;not null" json:"imageUrl"`
	Title        string    `gorm:"size:150" json:"title"`
	Badge        string    `gorm:"size:50" json:"badge"`
	DiscountText string    `gorm:"size:50" json:"discountText"`
	Link         string    `gorm:"size:500" json:"link"`
	DisplayOrder int       `gorm:"not null" json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (i *HomeSectionItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return
}
