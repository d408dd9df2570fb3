package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/access"
	"github.com/Skotchmaster/storefront/internal/apperr"
	catalogmodels "github.com/Skotchmaster/storefront/internal/catalog/models"
	catalogrepo "github.com/Skotchmaster/storefront/internal/catalog/repo"
	"github.com/Skotchmaster/storefront/internal/order/models"
	"github.com/Skotchmaster/storefront/internal/order/repo"
	"github.com/Skotchmaster/storefront/internal/order/transport"
	"github.com/Skotchmaster/storefront/internal/outbox"
)

const DefaultTopic = "order_events"

type OrderService struct {
	Repo    *repo.GormRepo
	Catalog *catalogrepo.GormRepo
	Outbox  *outbox.GormRepo
	Topic   string
}

func (s *OrderService) topic() string {
	if s.Topic == "" {
		return DefaultTopic
	}
	return s.Topic
}

// Emit records an order event on the outbox inside tx.
func (s *OrderService) Emit(ctx context.Context, tx *gorm.DB, typ string, ev transport.OrderEvent) error {
	e, err := outbox.NewEvent(s.topic(), ev.OrderID.String(), typ, ev)
	if err != nil {
		return err
	}
	return s.Outbox.WithTx(tx).Add(ctx, e)
}

func validateCreate(req transport.CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return apperr.New(apperr.KindValidation, "at least one item is required")
	}
	for i, it := range req.Items {
		if it.ProductID == uuid.Nil {
			return apperr.New(apperr.KindValidation, "items[%d]: productId is required", i)
		}
		if it.Quantity < 1 {
			return apperr.New(apperr.KindValidation, "items[%d]: quantity must be >= 1", i)
		}
	}

	a := req.ShippingAddress
	fields := []struct{ name, value string }{
		{"name", a.Name}, {"phone", a.Phone}, {"street", a.Street}, {"city", a.City},
		{"state", a.State}, {"pincode", a.Pincode}, {"country", a.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return apperr.New(apperr.KindValidation, "shippingAddress.%s is required", f.name)
		}
	}

	if strings.TrimSpace(req.GatewayOrderID) == "" {
		return apperr.New(apperr.KindValidation, "gatewayOrderId is required")
	}
	return nil
}

func trimAddress(a models.ShippingAddress) models.ShippingAddress {
	return models.ShippingAddress{
		Name:    strings.TrimSpace(a.Name),
		Phone:   strings.TrimSpace(a.Phone),
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		Pincode: strings.TrimSpace(a.Pincode),
		Country: strings.TrimSpace(a.Country),
	}
}

type reservation struct {
	productID uuid.UUID
	quantity  int64
}

// reservations sums requested quantities per product, keeping first-seen order.
func reservations(items []transport.CreateOrderItem) []reservation {
	idx := make(map[uuid.UUID]int, len(items))
	var out []reservation
	for _, it := range items {
		if n, ok := idx[it.ProductID]; ok {
			out[n].quantity += it.Quantity
			continue
		}
		idx[it.ProductID] = len(out)
		out = append(out, reservation{productID: it.ProductID, quantity: it.Quantity})
	}
	return out
}

func insufficient(p catalogmodels.Product) error {
	return apperr.New(apperr.KindInsufficientStock, "insufficient stock for %s", p.Name)
}

// CreateOrder checks out the caller's items: stock is reserved, the order and
// its order_created event are written in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, p access.Principal, req transport.CreateOrderRequest) (*models.Order, error) {
	if !p.Can(access.OrdersCreate) {
		return nil, apperr.New(apperr.KindForbidden, "not allowed to create orders")
	}
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	wanted := reservations(req.Items)
	ids := make([]uuid.UUID, 0, len(wanted))
	for _, w := range wanted {
		ids = append(ids, w.productID)
	}

	products, err := s.Catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, w := range wanted {
		prod, ok := products[w.productID]
		if !ok {
			return nil, apperr.New(apperr.KindNotFound, "product %s not found", w.productID)
		}
		if w.quantity > prod.Stock {
			return nil, insufficient(prod)
		}
	}

	order := &models.Order{
		UserID:          p.UserID,
		ShippingAddress: trimAddress(req.ShippingAddress),
		PaymentInfo: models.PaymentInfo{
			GatewayOrderID: strings.TrimSpace(req.GatewayOrderID),
			Status:         models.PaymentPending,
		},
		OrderStatus: models.OrderStatusPending,
		TotalAmount: decimal.Zero,
	}
	for _, it := range req.Items {
		prod := products[it.ProductID]
		price := prod.EffectivePrice()
		order.Items = append(order.Items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      prod.Name,
			Quantity:  it.Quantity,
			Price:     price,
			Size:      strings.TrimSpace(it.Size),
			Color:     strings.TrimSpace(it.Color),
		})
		order.TotalAmount = order.TotalAmount.Add(price.Mul(decimal.NewFromInt(it.Quantity)))
	}

	err = s.Repo.Transact(ctx, func(tx *gorm.DB) error {
		catalog := s.Catalog.WithTx(tx)
		for _, w := range wanted {
			if err := catalog.DecrementStock(ctx, w.productID, w.quantity); err != nil {
				if errors.Is(err, catalogrepo.ErrOutOfStock) {
					return insufficient(products[w.productID])
				}
				return err
			}
		}
		if err := s.Repo.WithTx(tx).CreateOrder(ctx, order); err != nil {
			return err
		}
		return s.Emit(ctx, tx, outbox.TypeOrderCreated, transport.NewOrderEvent(order))
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder returns an order the caller owns, or any order for holders of orders:read:all.
func (s *OrderService) GetOrder(ctx context.Context, p access.Principal, id uuid.UUID) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "order %s not found", id)
		}
		return nil, err
	}
	if !p.CanRead(o.UserID) {
		return nil, apperr.New(apperr.KindForbidden, "not allowed to view this order")
	}
	return o, nil
}

func (s *OrderService) ListOrders(ctx context.Context, p access.Principal, status models.OrderStatus, offset, limit int) (int64, []models.Order, error) {
	if status != "" && !status.Valid() {
		return 0, nil, apperr.New(apperr.KindValidation, "unknown order status %q", status)
	}

	switch {
	case p.Can(access.OrdersReadAll):
		return s.Repo.ListOrders(ctx, "", status, offset, limit)
	case p.Can(access.OrdersReadOwn):
		return s.Repo.ListOrders(ctx, p.UserID, status, offset, limit)
	default:
		return 0, nil, apperr.New(apperr.KindForbidden, "not allowed to list orders")
	}
}

// UpdateStatus sets any known status. Cancelling returns the ordered quantities
// to stock; leaving cancelled reserves them again.
func (s *OrderService) UpdateStatus(ctx context.Context, p access.Principal, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !p.Can(access.OrdersUpdateStatus) {
		return nil, apperr.New(apperr.KindForbidden, "not allowed to change order status")
	}
	if !status.Valid() {
		return nil, apperr.New(apperr.KindValidation, "unknown order status %q", status)
	}

	var updated *models.Order
	err := s.Repo.Transact(ctx, func(tx *gorm.DB) error {
		orders := s.Repo.WithTx(tx)
		o, err := orders.GetOrder(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, "order %s not found", id)
			}
			return err
		}

		prev := o.OrderStatus
		catalog := s.Catalog.WithTx(tx)
		switch {
		case status == models.OrderStatusCancelled && prev != models.OrderStatusCancelled:
			for _, it := range o.Items {
				if err := catalog.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		case prev == models.OrderStatusCancelled && status != models.OrderStatusCancelled:
			for _, it := range o.Items {
				if err := catalog.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
					if errors.Is(err, catalogrepo.ErrOutOfStock) {
						return apperr.New(apperr.KindInsufficientStock, "insufficient stock for %s", it.Name)
					}
					return err
				}
			}
		}

		if err := orders.SetStatus(ctx, id, status); err != nil {
			return err
		}
		o.OrderStatus = status

		ev := transport.NewOrderEvent(o)
		ev.PreviousStatus = prev
		if err := s.Emit(ctx, tx, outbox.TypeOrderStatusChanged, ev); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, p, updated.ID)
}
