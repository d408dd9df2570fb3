package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/order/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) WithTx(tx *gorm.DB) *GormRepo {
	return &GormRepo{DB: tx}
}

// Transact runs fn in one database transaction, rolling back when it returns an error.
func (r *GormRepo) Transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.DB.WithContext(ctx).Transaction(fn)
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns orders newest first. An empty userID lists every user's orders.
func (r *GormRepo) ListOrders(ctx context.Context, userID string, status models.OrderStatus, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if status != "" {
		q = q.Where("order_status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := q.Preload("Items").Order("created_at DESC").Order("id ASC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) SetStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("order_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CompletePayment records a verified payment if the order's payment is still
// pending for gatewayOrderID. It reports whether a row changed.
func (r *GormRepo) CompletePayment(ctx context.Context, id uuid.UUID, gatewayOrderID, paymentID, signature string) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ? AND payment_gateway_order_id = ?", id, models.PaymentPending, gatewayOrderID).
		Updates(map[string]any{
			"payment_gateway_payment_id": paymentID,
			"payment_gateway_signature":  signature,
			"payment_status":             models.PaymentCompleted,
			"order_status":               models.OrderStatusProcessing,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FailPayment marks a still-pending payment as failed.
func (r *GormRepo) FailPayment(ctx context.Context, id uuid.UUID, gatewayOrderID, reason string) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ? AND payment_gateway_order_id = ?", id, models.PaymentPending, gatewayOrderID).
		Updates(map[string]any{
			"payment_status":         models.PaymentFailed,
			"payment_failure_reason": reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) PaymentIDUsed(ctx context.Context, paymentID string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("payment_gateway_payment_id = ?", paymentID).
		Count(&n).Error
	return n > 0, err
}
