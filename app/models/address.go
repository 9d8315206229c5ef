package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Address struct {
	ID        string    `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"userId"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Phone     string    `gorm:"size:20;not null" json:"phone"`
	Line1     string    `gorm:"size:255;not null" json:"line1"`
	Line2     string    `gorm:"size:255" json:"line2"`
	City      string    `gorm:"size:100;not null" json:"city"`
	State     string    `gorm:"size:100;not null" json:"state"`
	Pincode   string    `gorm:"size:10;not null" json:"pincode"`
	Country   string    `gorm:"size:60;not null" json:"country"`
	IsDefault bool      `gorm:"not null" json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullLine joins the street lines the way they are printed on a shipping label.
func (a *Address) FullLine() string {
	if a.Line2 == "" {
		return a.Line1
	}
	return a.Line1 + ", " + a.Line2
}

func (a *Address) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Country == "" {
		a.Country = "India"
	}
	return
}
