package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/pkg/storeclient"
)

// API is the part of the storefront client checkout needs.
type API interface {
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (*storeclient.PaymentIntent, error)
	CreateOrder(ctx context.Context, in storeclient.CreateOrderRequest) (*storeclient.Order, error)
}

type Receipt struct {
	Summary Summary
	Intent  *storeclient.PaymentIntent
	Order   *storeclient.Order
}

// Checkout opens a payment intent for the cart total and submits the cart as
// an order bound to that intent. The cart itself is left untouched.
func Checkout(ctx context.Context, api API, c *Cart, addr storeclient.ShippingAddress) (*Receipt, error) {
	if len(c.Items) == 0 {
		return nil, ErrEmpty
	}

	summary := c.Summary()
	intent, err := api.CreatePaymentIntent(ctx, summary.Total)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	items := make([]storeclient.OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, storeclient.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Size:      it.Size,
			Color:     it.Color,
		})
	}

	order, err := api.CreateOrder(ctx, storeclient.CreateOrderRequest{
		Items:           items,
		ShippingAddress: addr,
		GatewayOrderID:  intent.OrderID,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return &Receipt{Summary: summary, Intent: intent, Order: order}, nil
}
