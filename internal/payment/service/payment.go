package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/access"
	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/order/models"
	orderservice "github.com/Skotchmaster/storefront/internal/order/service"
	ordertransport "github.com/Skotchmaster/storefront/internal/order/transport"
	"github.com/Skotchmaster/storefront/internal/outbox"
	"github.com/Skotchmaster/storefront/internal/payment/gateway"
	"github.com/Skotchmaster/storefront/internal/payment/transport"
)

type Gateway interface {
	CreateOrder(ctx context.Context, in gateway.CreateOrderRequest) (*gateway.Order, error)
}

type PaymentService struct {
	Gateway   Gateway
	KeySecret []byte
	Currency  string
	Orders    *orderservice.OrderService
	Now       func() time.Time
}

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount to the gateway's integer minor units.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func (s *PaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateIntent opens a gateway order for amount (major units) so the client can
// start checkout.
func (s *PaymentService) CreateIntent(ctx context.Context, p access.Principal, req transport.CreateIntentRequest) (*transport.CreateIntentResponse, error) {
	if !p.Can(access.PaymentsCreate) {
		return nil, apperr.New(apperr.KindForbidden, "not allowed to create payments")
	}

	minor := ToMinorUnits(req.Amount)
	if !req.Amount.IsPositive() || minor < 1 {
		return nil, apperr.New(apperr.KindValidation, "amount must be positive")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.Currency
	}

	out, err := s.Gateway.CreateOrder(ctx, gateway.CreateOrderRequest{
		Amount:   minor,
		Currency: currency,
		Receipt:  fmt.Sprintf("receipt_%d", s.now().UnixMilli()),
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamGateway, err, "payment gateway unavailable")
	}

	return &transport.CreateIntentResponse{
		Success:  true,
		OrderID:  out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
	}, nil
}

func parseOrderID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.KindValidation, err, "orderId is not a uuid")
	}
	return id, nil
}

// Verify completes an order's payment once the gateway signature checks out.
// A signature mismatch changes nothing.
func (s *PaymentService) Verify(ctx context.Context, p access.Principal, req transport.VerifyRequest) (*models.Order, error) {
	if !p.Can(access.PaymentsVerify) {
		return nil, apperr.New(apperr.KindForbidden, "not allowed to verify payments")
	}
	if req.GatewayOrderID == "" || req.GatewayPaymentID == "" || req.Signature == "" {
		return nil, apperr.New(apperr.KindValidation, "gatewayOrderId, gatewayPaymentId and signature are required")
	}
	id, err := parseOrderID(req.OrderID)
	if err != nil {
		return nil, err
	}

	if !gateway.VerifySignature(s.KeySecret, req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		return nil, apperr.New(apperr.KindInvalidSignature, "invalid payment signature")
	}

	order, err := s.Orders.GetOrder(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if order.PaymentInfo.GatewayOrderID != req.GatewayOrderID {
		return nil, apperr.New(apperr.KindInvalidSignature, "signature does not belong to this order")
	}
	if order.PaymentInfo.Status != models.PaymentPending {
		return nil, apperr.New(apperr.KindConflict, "payment is already %s", order.PaymentInfo.Status)
	}

	err = s.Orders.Repo.Transact(ctx, func(tx *gorm.DB) error {
		orders := s.Orders.Repo.WithTx(tx)

		used, err := orders.PaymentIDUsed(ctx, req.GatewayPaymentID)
		if err != nil {
			return err
		}
		if used {
			return apperr.New(apperr.KindConflict, "payment %s is already recorded", req.GatewayPaymentID)
		}

		changed, err := orders.CompletePayment(ctx, id, req.GatewayOrderID, req.GatewayPaymentID, req.Signature)
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Wrap(apperr.KindConflict, err, "payment is already recorded")
			}
			return err
		}
		if !changed {
			return apperr.New(apperr.KindConflict, "payment is no longer pending")
		}

		order.PaymentInfo.Status = models.PaymentCompleted
		order.OrderStatus = models.OrderStatusProcessing
		ev := ordertransport.NewOrderEvent(order)
		ev.PreviousStatus = models.OrderStatusPending
		return s.Orders.Emit(ctx, tx, outbox.TypeOrderPaid, ev)
	})
	if err != nil {
		return nil, err
	}

	return s.Orders.GetOrder(ctx, p, id)
}

// ReportFailure records that the buyer's checkout failed at the gateway.
func (s *PaymentService) ReportFailure(ctx context.Context, p access.Principal, req transport.FailureRequest) (*models.Order, error) {
	if !p.Can(access.PaymentsVerify) {
		return nil, apperr.New(apperr.KindForbidden, "not allowed to report payments")
	}
	if strings.TrimSpace(req.GatewayOrderID) == "" {
		return nil, apperr.New(apperr.KindValidation, "gatewayOrderId is required")
	}
	id, err := parseOrderID(req.OrderID)
	if err != nil {
		return nil, err
	}

	order, err := s.Orders.GetOrder(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if order.PaymentInfo.GatewayOrderID != req.GatewayOrderID {
		return nil, apperr.New(apperr.KindValidation, "gatewayOrderId does not match this order")
	}
	if order.PaymentInfo.Status != models.PaymentPending {
		return nil, apperr.New(apperr.KindConflict, "payment is already %s", order.PaymentInfo.Status)
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "payment failed"
	}

	err = s.Orders.Repo.Transact(ctx, func(tx *gorm.DB) error {
		changed, err := s.Orders.Repo.WithTx(tx).FailPayment(ctx, id, req.GatewayOrderID, reason)
		if err != nil {
			return err
		}
		if !changed {
			return apperr.New(apperr.KindConflict, "payment is no longer pending")
		}

		order.PaymentInfo.Status = models.PaymentFailed
		ev := ordertransport.NewOrderEvent(order)
		ev.Reason = reason
		return s.Orders.Emit(ctx, tx, outbox.TypeOrderPaymentFailed, ev)
	})
	if err != nil {
		return nil, err
	}

	return s.Orders.GetOrder(ctx, p, id)
}
