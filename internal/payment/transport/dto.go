package transport

import "github.com/shopspring/decimal"

type CreateIntentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
}

// CreateIntentResponse.Amount is in minor units, as the gateway reports it.
type CreateIntentResponse struct {
	Success  bool   `json:"success"`
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type VerifyRequest struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
	OrderID          string `json:"orderId"`
}

type FailureRequest struct {
	OrderID        string `json:"orderId"`
	GatewayOrderID string `json:"gatewayOrderId"`
	Reason         string `json:"reason"`
}
