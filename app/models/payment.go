package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Payment struct {
	ID               string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	OrderID          string          `gorm:"size:36;not null;uniqueIndex" json:"orderId"`
	Provider         string          `gorm:"size:30;not null" json:"provider"`
	GatewayOrderID   string          `gorm:"size:100;not null;uniqueIndex" json:"gatewayOrderId"`
	GatewayPaymentID string          `gorm:"size:100;not null" json:"gatewayPaymentId"`
	GatewaySignature string          `gorm:"size:255" json:"-"`
	Amount           decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"amount"`
	Currency         string          `gorm:"size:3;not null" json:"currency"`
	Status           PaymentStatus   `gorm:"size:20;not null" json:"status"`
	Method           PaymentMethod   `gorm:"size:10;not null" json:"method"`
	TransactedAt     time.Time       `json:"transactedAt"`
	Payload          datatypes.JSON  `json:"-"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

type IntentStatus string

const (
	IntentStatusCreated  IntentStatus = "CREATED"
	IntentStatusConsumed IntentStatus = "CONSUMED"

	// IntentStatusMismatched marks a verified payment whose cart total moved
	// after the intent was opened. No order exists for it.
	IntentStatusMismatched IntentStatus = "MISMATCHED"
)

// PaymentIntent records a gateway order opened for a user together with the
// amount computed from their cart at that moment.
type PaymentIntent struct {
	ID             string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	UserID         string          `gorm:"size:36;not null;index" json:"userId"`
	Provider       string          `gorm:"size:30;not null" json:"provider"`
	GatewayOrderID string          `gorm:"size:100;not null;uniqueIndex" json:"gatewayOrderId"`
	Receipt        string          `gorm:"size:64;not null" json:"receipt"`
	Amount         decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"amount"`
	AmountMinor    int64           `gorm:"not null" json:"amountMinor"`
	Currency       string          `gorm:"size:3;not null" json:"currency"`
	Status         IntentStatus    `gorm:"size:20;not null" json:"status"`
	OrderID        *string         `gorm:"size:36" json:"orderId"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`

	// Set only for MISMATCHED intents.
	GatewayPaymentID string `gorm:"size:100" json:"gatewayPaymentId,omitempty"`
	GatewaySignature string `gorm:"size:255" json:"-"`
}

func (pi *PaymentIntent) BeforeCreate(tx *gorm.DB) (err error) {
	if pi.ID == "" {
		pi.ID = uuid.New().String()
	}
	return
}
