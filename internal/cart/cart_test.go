package cart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/storeclient"
)

func item(id uuid.UUID, price, qty int64, size string) Item {
	return Item{ProductID: id, Name: "Kurta", Price: decimal.NewFromInt(price), Quantity: qty, Size: size, Stock: 10}
}

func TestAddMergesSameLine(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	var c Cart
	require.NoError(t, c.Add(item(id, 100, 1, "M")))
	require.NoError(t, c.Add(item(id, 100, 2, "M")))
	require.NoError(t, c.Add(item(id, 100, 1, "L")))

	require.Len(t, c.Items, 2)
	assert.EqualValues(t, 3, c.Items[0].Quantity)
	assert.EqualValues(t, 1, c.Items[1].Quantity)
}

func TestAddRejects(t *testing.T) {
	t.Parallel()

	var c Cart
	assert.ErrorIs(t, c.Add(item(uuid.Nil, 100, 1, "")), ErrNoProduct)
	assert.ErrorIs(t, c.Add(item(uuid.New(), 100, 0, "")), ErrBadQuantity)
	assert.Empty(t, c.Items)
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	t.Parallel()

	a, b := uuid.New(), uuid.New()
	var c Cart
	require.NoError(t, c.Add(item(a, 100, 1, "M")))
	require.NoError(t, c.Add(item(a, 100, 1, "L")))
	require.NoError(t, c.Add(item(b, 50, 1, "")))

	require.NoError(t, c.UpdateQuantity(a, 4))
	assert.EqualValues(t, 4, c.Items[0].Quantity)
	assert.EqualValues(t, 4, c.Items[1].Quantity)

	require.NoError(t, c.UpdateQuantity(a, 0))
	require.Len(t, c.Items, 1)
	assert.Equal(t, b, c.Items[0].ProductID)

	c.Remove(b)
	assert.Empty(t, c.Items)

	require.NoError(t, c.Add(item(a, 100, 1, "")))
	c.Clear()
	assert.Empty(t, c.Items)
}

func TestStockCapsQuantity(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	var c Cart
	require.NoError(t, c.Add(item(id, 100, 8, "M")))

	err := c.Add(item(id, 100, 3, "M"))
	require.ErrorIs(t, err, ErrOverStock)
	assert.EqualError(t, err, "quantity exceeds stock: only 10 of Kurta in stock")
	assert.EqualValues(t, 8, c.Items[0].Quantity)

	require.NoError(t, c.Add(item(id, 100, 2, "M")))
	assert.EqualValues(t, 10, c.Items[0].Quantity)

	assert.ErrorIs(t, c.Add(item(uuid.New(), 100, 11, "")), ErrOverStock)
	require.Len(t, c.Items, 1)

	require.NoError(t, c.UpdateQuantity(id, 4))
	assert.ErrorIs(t, c.UpdateQuantity(id, 11), ErrOverStock)
	assert.EqualValues(t, 4, c.Items[0].Quantity)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		items    []Item
		count    int64
		subtotal string
		shipping string
		tax      string
		total    string
	}{
		{name: "empty", count: 0, subtotal: "0", shipping: "0", tax: "0", total: "0"},
		{
			name:  "below free shipping",
			items: []Item{item(uuid.New(), 500, 1, "")},
			count: 1, subtotal: "500", shipping: "50", tax: "90", total: "640",
		},
		{
			name:  "exactly at threshold still pays shipping",
			items: []Item{item(uuid.New(), 333, 3, "")},
			count: 3, subtotal: "999", shipping: "50", tax: "179.82", total: "1228.82",
		},
		{
			name:  "free shipping",
			items: []Item{item(uuid.New(), 500, 2, ""), item(uuid.New(), 1, 1, "")},
			count: 3, subtotal: "1001", shipping: "0", tax: "180.18", total: "1181.18",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Cart{Items: tt.items}
			s := c.Summary()
			assert.Equal(t, tt.count, s.TotalItems)
			assert.True(t, decimal.RequireFromString(tt.subtotal).Equal(s.Subtotal), s.Subtotal.String())
			assert.True(t, decimal.RequireFromString(tt.shipping).Equal(s.Shipping), s.Shipping.String())
			assert.True(t, decimal.RequireFromString(tt.tax).Equal(s.Tax), s.Tax.String())
			assert.True(t, decimal.RequireFromString(tt.total).Equal(s.Total), s.Total.String())
		})
	}
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	store := FileStore{Path: filepath.Join(t.TempDir(), "nested", "cart.json")}

	c, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	id := uuid.New()
	require.NoError(t, c.Add(item(id, 250, 2, "S")))
	require.NoError(t, store.Save(c))

	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, id, got.Items[0].ProductID)
	assert.True(t, decimal.NewFromInt(250).Equal(got.Items[0].Price))
	assert.EqualValues(t, 2, got.Items[0].Quantity)

	require.NoError(t, os.WriteFile(store.Path, []byte("{"), 0o600))
	_, err = store.Load()
	assert.Error(t, err)
}

type fakeAPI struct {
	intentAmount decimal.Decimal
	order        storeclient.CreateOrderRequest
	intentErr    error
}

func (f *fakeAPI) CreatePaymentIntent(_ context.Context, amount decimal.Decimal) (*storeclient.PaymentIntent, error) {
	if f.intentErr != nil {
		return nil, f.intentErr
	}
	f.intentAmount = amount
	return &storeclient.PaymentIntent{OrderID: "order_gw_9", Amount: amount.Mul(decimal.NewFromInt(100)).IntPart(), Currency: "INR"}, nil
}

func (f *fakeAPI) CreateOrder(_ context.Context, in storeclient.CreateOrderRequest) (*storeclient.Order, error) {
	f.order = in
	return &storeclient.Order{ID: uuid.New(), OrderStatus: "pending"}, nil
}

func TestCheckout(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	c := &Cart{}
	require.NoError(t, c.Add(item(id, 500, 1, "M")))

	api := &fakeAPI{}
	addr := storeclient.ShippingAddress{Name: "Asha", Phone: "1", Street: "s", City: "c", State: "st", Pincode: "1", Country: "IN"}
	r, err := Checkout(context.Background(), api, c, addr)
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(640).Equal(api.intentAmount))
	assert.Equal(t, "order_gw_9", api.order.GatewayOrderID)
	require.Len(t, api.order.Items, 1)
	assert.Equal(t, id, api.order.Items[0].ProductID)
	assert.Equal(t, "M", api.order.Items[0].Size)
	assert.Equal(t, addr, api.order.ShippingAddress)
	assert.Equal(t, "pending", r.Order.OrderStatus)
	assert.Len(t, c.Items, 1)
}

func TestCheckoutErrors(t *testing.T) {
	t.Parallel()

	_, err := Checkout(context.Background(), &fakeAPI{}, &Cart{}, storeclient.ShippingAddress{})
	assert.ErrorIs(t, err, ErrEmpty)

	c := &Cart{}
	require.NoError(t, c.Add(item(uuid.New(), 10, 1, "")))
	boom := errors.New("gateway down")
	_, err = Checkout(context.Background(), &fakeAPI{intentErr: boom}, c, storeclient.ShippingAddress{})
	assert.ErrorIs(t, err, boom)
}
