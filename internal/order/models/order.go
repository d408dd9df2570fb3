package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type ShippingAddress struct {
	Name    string `gorm:"not null" json:"name"`
	Phone   string `gorm:"not null" json:"phone"`
	Street  string `gorm:"not null" json:"street"`
	City    string `gorm:"not null" json:"city"`
	State   string `gorm:"not null" json:"state"`
	Pincode string `gorm:"not null" json:"pincode"`
	Country string `gorm:"not null" json:"country"`
}

// PaymentInfo is stored inline on the order row. A gateway payment id can be
// recorded on at most one order.
type PaymentInfo struct {
	GatewayOrderID   string        `gorm:"index;not null"            json:"gatewayOrderId"`
	GatewayPaymentID *string       `gorm:"uniqueIndex"               json:"gatewayPaymentId,omitempty"`
	GatewaySignature *string       `                                 json:"gatewaySignature,omitempty"`
	FailureReason    string        `                                 json:"failureReason,omitempty"`
	Status           PaymentStatus `gorm:"not null;default:pending"  json:"paymentStatus"`
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"                              json:"id"`
	UserID          string          `gorm:"index;not null"                                    json:"userId"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"   json:"items"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null"                       json:"totalAmount"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_"                 json:"shippingAddress"`
	PaymentInfo     PaymentInfo     `gorm:"embedded;embeddedPrefix:payment_"                  json:"paymentInfo"`
	OrderStatus     OrderStatus     `gorm:"index;not null;default:pending"                    json:"orderStatus"`
	CreatedAt       time.Time       `gorm:"index"                                             json:"createdAt"`
	UpdatedAt       time.Time       `                                                         json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem snapshots the unit price and name at checkout time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"              json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"          json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"                json:"productId"`
	Name      string          `gorm:"not null;default:''"               json:"name"`
	Quantity  int64           `gorm:"not null;check:quantity >= 1"      json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"price"`
	Size      string          `                                         json:"size,omitempty"`
	Color     string          `                                         json:"color,omitempty"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
