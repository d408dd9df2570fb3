// Package cart holds the client-side shopping cart. The server never stores
// carts; the CLI keeps one in a local JSON file and turns it into an order at
// checkout.
package cart

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	FreeShippingAbove = decimal.NewFromInt(999)
	ShippingFee       = decimal.NewFromInt(50)
	TaxRate           = decimal.NewFromFloat(0.18)
)

var (
	ErrNoProduct   = errors.New("cart item has no product id")
	ErrBadQuantity = errors.New("cart item quantity must be positive")
	ErrEmpty       = errors.New("cart is empty")
	ErrOverStock   = errors.New("quantity exceeds stock")
)

func overStock(it Item) error {
	return fmt.Errorf("%w: only %d of %s in stock", ErrOverStock, it.Stock, it.Name)
}

type Item struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Image     string          `json:"image"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Stock     int64           `json:"stock"`
}

func (i Item) sameLine(o Item) bool {
	return i.ProductID == o.ProductID && i.Size == o.Size && i.Color == o.Color
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

type Cart struct {
	Items []Item `json:"items"`
}

type Summary struct {
	TotalItems int64           `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
}

// Add appends item, or bumps the quantity of the line with the same product,
// size and color. item.Stock is the stock as last seen and caps the line.
func (c *Cart) Add(item Item) error {
	if item.ProductID == uuid.Nil {
		return ErrNoProduct
	}
	if item.Quantity <= 0 {
		return ErrBadQuantity
	}
	for i := range c.Items {
		if c.Items[i].sameLine(item) {
			if c.Items[i].Quantity+item.Quantity > item.Stock {
				return overStock(item)
			}
			c.Items[i].Quantity += item.Quantity
			c.Items[i].Stock = item.Stock
			return nil
		}
	}
	if item.Quantity > item.Stock {
		return overStock(item)
	}
	c.Items = append(c.Items, item)
	return nil
}

// Remove drops every line of the product regardless of size and color.
func (c *Cart) Remove(productID uuid.UUID) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

// UpdateQuantity sets the quantity on every line of the product; a quantity
// of zero or less removes them. Nothing changes when quantity exceeds the
// stock recorded on any of those lines.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int64) error {
	if quantity <= 0 {
		c.Remove(productID)
		return nil
	}
	for _, it := range c.Items {
		if it.ProductID == productID && quantity > it.Stock {
			return overStock(it)
		}
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
		}
	}
	return nil
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) Summary() Summary {
	var s Summary
	s.Subtotal = decimal.Zero
	for _, it := range c.Items {
		s.TotalItems += it.Quantity
		s.Subtotal = s.Subtotal.Add(it.LineTotal())
	}

	s.Shipping = decimal.Zero
	if s.Subtotal.IsPositive() && s.Subtotal.LessThanOrEqual(FreeShippingAbove) {
		s.Shipping = ShippingFee
	}
	s.Tax = s.Subtotal.Mul(TaxRate).Round(2)
	s.Total = s.Subtotal.Add(s.Shipping).Add(s.Tax)
	return s
}
