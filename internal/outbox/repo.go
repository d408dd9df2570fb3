package outbox

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) WithTx(tx *gorm.DB) *GormRepo {
	return &GormRepo{DB: tx}
}

func (r *GormRepo) Add(ctx context.Context, ev *Event) error {
	return r.DB.WithContext(ctx).Create(ev).Error
}

func (r *GormRepo) Pending(ctx context.Context, limit int) ([]Event, error) {
	var res []Event
	err := r.DB.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *GormRepo) MarkPublished(ctx context.Context, ids []uint64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Model(&Event{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"status": StatusPublished, "published_at": at}).Error
}
