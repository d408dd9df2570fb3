package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/access"
	"github.com/Skotchmaster/storefront/internal/apperr"
	catalogmodels "github.com/Skotchmaster/storefront/internal/catalog/models"
	catalogrepo "github.com/Skotchmaster/storefront/internal/catalog/repo"
	"github.com/Skotchmaster/storefront/internal/order/models"
	orderrepo "github.com/Skotchmaster/storefront/internal/order/repo"
	orderservice "github.com/Skotchmaster/storefront/internal/order/service"
	ordertransport "github.com/Skotchmaster/storefront/internal/order/transport"
	"github.com/Skotchmaster/storefront/internal/outbox"
	"github.com/Skotchmaster/storefront/internal/payment/gateway"
	"github.com/Skotchmaster/storefront/internal/payment/transport"
	"github.com/Skotchmaster/storefront/internal/storetest"
)

var (
	secret = []byte("rzp_secret")
	alice  = access.Principal{UserID: "alice", Role: access.RoleUser}
	bob    = access.Principal{UserID: "bob", Role: access.RoleUser}
	admin  = access.Principal{UserID: "root", Role: access.RoleAdmin}
)

type fakeGateway struct {
	got gateway.CreateOrderRequest
	err error
}

func (f *fakeGateway) CreateOrder(_ context.Context, in gateway.CreateOrderRequest) (*gateway.Order, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.Order{ID: "order_gw_new", Amount: in.Amount, Currency: in.Currency, Receipt: in.Receipt}, nil
}

type env struct {
	svc     *PaymentService
	gw      *fakeGateway
	outbox  *outbox.GormRepo
	catalog *catalogrepo.GormRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := storetest.NewDB(t)
	e := &env{
		gw:      &fakeGateway{},
		outbox:  &outbox.GormRepo{DB: db},
		catalog: &catalogrepo.GormRepo{DB: db},
	}
	orders := &orderservice.OrderService{
		Repo:    &orderrepo.GormRepo{DB: db},
		Catalog: e.catalog,
		Outbox:  e.outbox,
	}
	e.svc = &PaymentService{
		Gateway:   e.gw,
		KeySecret: secret,
		Currency:  "INR",
		Orders:    orders,
		Now:       func() time.Time { return time.UnixMilli(1700000000123) },
	}
	return e
}

func (e *env) order(t *testing.T, who access.Principal, gatewayOrderID string) *models.Order {
	t.Helper()
	p := &catalogmodels.Product{
		Name: "P", Description: "P", Price: decimal.NewFromInt(500), Category: "c",
		Images: catalogmodels.StringList{"/i.png"}, Stock: 10,
	}
	require.NoError(t, e.catalog.CreateProduct(context.Background(), p))

	o, err := e.svc.Orders.CreateOrder(context.Background(), who, ordertransport.CreateOrderRequest{
		Items: []ordertransport.CreateOrderItem{{ProductID: p.ID, Quantity: 1}},
		ShippingAddress: models.ShippingAddress{
			Name: "A", Phone: "1", Street: "s", City: "c", State: "st", Pincode: "1", Country: "IN",
		},
		GatewayOrderID: gatewayOrderID,
	})
	require.NoError(t, err)
	return o
}

func verifyReq(o *models.Order, paymentID string) transport.VerifyRequest {
	return transport.VerifyRequest{
		GatewayOrderID:   o.PaymentInfo.GatewayOrderID,
		GatewayPaymentID: paymentID,
		Signature:        gateway.Sign(secret, o.PaymentInfo.GatewayOrderID, paymentID),
		OrderID:          o.ID.String(),
	}
}

func eventTypes(t *testing.T, r *outbox.GormRepo) []string {
	t.Helper()
	evs, err := r.Pending(context.Background(), 100)
	require.NoError(t, err)
	var out []string
	for _, ev := range evs {
		out = append(out, ev.Type)
	}
	return out
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"499.99", 49999},
		{"1000", 100000},
		{"0.015", 2},
		{"10.004", 1000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToMinorUnits(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestCreateIntent(t *testing.T) {
	e := newEnv(t)

	resp, err := e.svc.CreateIntent(context.Background(), alice, transport.CreateIntentRequest{Amount: decimal.RequireFromString("499.99")})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "order_gw_new", resp.OrderID)
	assert.EqualValues(t, 49999, resp.Amount)
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, "receipt_1700000000123", e.gw.got.Receipt)
}

func TestCreateIntentRejects(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.CreateIntent(context.Background(), alice, transport.CreateIntentRequest{Amount: decimal.Zero})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.svc.CreateIntent(context.Background(), alice, transport.CreateIntentRequest{Amount: decimal.RequireFromString("0.001")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.svc.CreateIntent(context.Background(), access.Principal{}, transport.CreateIntentRequest{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	e.gw.err = errors.New("boom")
	_, err = e.svc.CreateIntent(context.Background(), alice, transport.CreateIntentRequest{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperr.ErrUpstreamGateway)
	assert.Equal(t, 502, apperr.KindOf(err).HTTPStatus())
}

func TestVerifyCompletesPayment(t *testing.T) {
	e := newEnv(t)
	o := e.order(t, alice, "order_gw_1")

	got, err := e.svc.Verify(context.Background(), alice, verifyReq(o, "pay_1"))
	require.NoError(t, err)

	assert.Equal(t, models.PaymentCompleted, got.PaymentInfo.Status)
	assert.Equal(t, models.OrderStatusProcessing, got.OrderStatus)
	require.NotNil(t, got.PaymentInfo.GatewayPaymentID)
	assert.Equal(t, "pay_1", *got.PaymentInfo.GatewayPaymentID)
	assert.Equal(t, []string{outbox.TypeOrderCreated, outbox.TypeOrderPaid}, eventTypes(t, e.outbox))
}

func TestVerifyTamperedPaymentID(t *testing.T) {
	e := newEnv(t)
	o := e.order(t, alice, "order_gw_1")

	req := verifyReq(o, "pay_1")
	req.GatewayPaymentID = "pay_2"
	_, err := e.svc.Verify(context.Background(), alice, req)
	require.ErrorIs(t, err, apperr.ErrInvalidSignature)

	got, err := e.svc.Orders.GetOrder(context.Background(), alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.PaymentInfo.Status)
	assert.Nil(t, got.PaymentInfo.GatewayPaymentID)
	assert.Equal(t, []string{outbox.TypeOrderCreated}, eventTypes(t, e.outbox))
}

func TestVerifyAccessAndLookup(t *testing.T) {
	e := newEnv(t)
	o := e.order(t, alice, "order_gw_1")

	_, err := e.svc.Verify(context.Background(), bob, verifyReq(o, "pay_1"))
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	missing := verifyReq(o, "pay_1")
	missing.OrderID = uuid.NewString()
	_, err = e.svc.Verify(context.Background(), alice, missing)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	bad := verifyReq(o, "pay_1")
	bad.OrderID = "nope"
	_, err = e.svc.Verify(context.Background(), alice, bad)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.svc.Verify(context.Background(), admin, verifyReq(o, "pay_1"))
	assert.NoError(t, err)
}

func TestVerifyReplay(t *testing.T) {
	e := newEnv(t)
	first := e.order(t, alice, "order_gw_1")
	second := e.order(t, alice, "order_gw_2")

	_, err := e.svc.Verify(context.Background(), alice, verifyReq(first, "pay_1"))
	require.NoError(t, err)

	// Same request again: the payment is no longer pending.
	_, err = e.svc.Verify(context.Background(), alice, verifyReq(first, "pay_1"))
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// A valid signature for the first order replayed against the second.
	replay := verifyReq(first, "pay_1")
	replay.OrderID = second.ID.String()
	_, err = e.svc.Verify(context.Background(), alice, replay)
	assert.ErrorIs(t, err, apperr.ErrInvalidSignature)

	// The second order's own gateway order, but a payment id already used.
	reused := verifyReq(second, "pay_1")
	_, err = e.svc.Verify(context.Background(), alice, reused)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := e.svc.Orders.GetOrder(context.Background(), alice, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.PaymentInfo.Status)
}

func TestReportFailure(t *testing.T) {
	e := newEnv(t)
	o := e.order(t, alice, "order_gw_1")

	got, err := e.svc.ReportFailure(context.Background(), alice, transport.FailureRequest{
		OrderID: o.ID.String(), GatewayOrderID: "order_gw_1", Reason: "card declined",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, got.PaymentInfo.Status)
	assert.Equal(t, "card declined", got.PaymentInfo.FailureReason)
	assert.Equal(t, []string{outbox.TypeOrderCreated, outbox.TypeOrderPaymentFailed}, eventTypes(t, e.outbox))

	_, err = e.svc.Verify(context.Background(), alice, verifyReq(o, "pay_9"))
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = e.svc.ReportFailure(context.Background(), alice, transport.FailureRequest{OrderID: o.ID.String(), GatewayOrderID: "order_gw_1"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestReportFailureRejectsOthers(t *testing.T) {
	e := newEnv(t)
	o := e.order(t, alice, "order_gw_1")

	_, err := e.svc.ReportFailure(context.Background(), bob, transport.FailureRequest{OrderID: o.ID.String(), GatewayOrderID: "order_gw_1"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = e.svc.ReportFailure(context.Background(), alice, transport.FailureRequest{OrderID: o.ID.String(), GatewayOrderID: "order_gw_x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
