// Package storeclient talks to the storefront HTTP API on behalf of a
// signed-in shopper.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient expects baseURL to point at the API root, e.g. http://localhost:8080/api/v1.
func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("storefront: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("storefront: %s (%d): %s", e.Kind, e.Status, e.Message)
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind string) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Kind == kind
}

type Product struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Images        []string         `json:"images"`
	Stock         int64            `json:"stock"`
	Sizes         []string         `json:"sizes"`
	Colors        []string         `json:"colors"`
}

func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

type PaymentIntent struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type OrderItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

type ShippingAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

type CreateOrderRequest struct {
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	GatewayOrderID  string          `json:"gatewayOrderId"`
}

type PaymentInfo struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId,omitempty"`
	Status           string `json:"paymentStatus"`
}

type Order struct {
	ID          uuid.UUID       `json:"id"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	PaymentInfo PaymentInfo     `json:"paymentInfo"`
	OrderStatus string          `json:"orderStatus"`
}

type VerifyRequest struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
	OrderID          string `json:"orderId"`
}

func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	var out struct {
		Product Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// CreatePaymentIntent asks the server to open a gateway order for amount in
// major currency units.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (*PaymentIntent, error) {
	var out PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/payment/create-order", map[string]any{"amount": amount}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, in CreateOrderRequest) (*Order, error) {
	var out struct {
		Order Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/orders", in, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

func (c *Client) VerifyPayment(ctx context.Context, in VerifyRequest) (*Order, error) {
	var out struct {
		Order Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/payment/verify", in, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e); err == nil {
			apiErr.Kind, apiErr.Message = e.Kind, e.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
