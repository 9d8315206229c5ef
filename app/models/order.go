package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

func (s OrderStatus) Valid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid || s == PaymentStatusRefunded
}

type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "COD"
	PaymentMethodPrepaid PaymentMethod = "PREPAID"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodPrepaid
}

// Order is written once at checkout. Only Status, PaymentStatus and
// TrackingNumber change afterwards.
type Order struct {
	ID            string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	OrderNumber   string          `gorm:"size:32;not null;uniqueIndex" json:"orderNumber"`
	UserID        string          `gorm:"size:36;not null;index" json:"userId"`
	Status        OrderStatus     `gorm:"size:20;not null;index" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"size:20;not null" json:"paymentStatus"`
	PaymentMethod PaymentMethod   `gorm:"size:10;not null" json:"paymentMethod"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"subtotal"`
	ShippingCost  decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"shippingCost"`
	CodCharge     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"codCharge"`
	Tax           decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"tax"`
	Total         decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total"`

	ShippingName    string `gorm:"size:150;not null" json:"shippingName"`
	ShippingPhone   string `gorm:"size:20;not null" json:"shippingPhone"`
	ShippingAddress string `gorm:"type:text;not null" json:"shippingAddress"`
	ShippingCity    string `gorm:"size:100;not null" json:"shippingCity"`
	ShippingState   string `gorm:"size:100;not null" json:"shippingState"`
	ShippingPincode string `gorm:"size:10;not null" json:"shippingPincode"`
	ShippingCountry string `gorm:"size:60;not null" json:"shippingCountry"`

	TrackingNumber string      `gorm:"size:100" json:"trackingNumber"`
	Items          []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payment        *Payment    `gorm:"foreignKey:OrderID" json:"payment,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return
}
