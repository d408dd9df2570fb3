package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/order/models"
)

// CreateOrderItem.Price is accepted for client compatibility and ignored:
// unit prices always come from the catalog.
type CreateOrderItem struct {
	ProductID uuid.UUID        `json:"productId"`
	Quantity  int64            `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Size      string           `json:"size,omitempty"`
	Color     string           `json:"color,omitempty"`
}

type CreateOrderRequest struct {
	Items           []CreateOrderItem      `json:"items"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	GatewayOrderID  string                 `json:"gatewayOrderId"`
}

type UpdateStatusRequest struct {
	OrderStatus models.OrderStatus `json:"orderStatus"`
}

// OrderEvent is the payload of every order event on the outbox.
type OrderEvent struct {
	OrderID        uuid.UUID            `json:"orderId"`
	UserID         string               `json:"userId"`
	OrderStatus    models.OrderStatus   `json:"orderStatus"`
	PreviousStatus models.OrderStatus   `json:"previousStatus,omitempty"`
	PaymentStatus  models.PaymentStatus `json:"paymentStatus"`
	TotalAmount    decimal.Decimal      `json:"totalAmount"`
	Items          []EventItem          `json:"items,omitempty"`
	Reason         string               `json:"reason,omitempty"`
}

type EventItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func NewOrderEvent(o *models.Order) OrderEvent {
	ev := OrderEvent{
		OrderID:       o.ID,
		UserID:        o.UserID,
		OrderStatus:   o.OrderStatus,
		PaymentStatus: o.PaymentInfo.Status,
		TotalAmount:   o.TotalAmount,
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, EventItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return ev
}
