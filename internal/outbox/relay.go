package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/storefront/pkg/kafka"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Publisher interface {
	Publish(ctx context.Context, msgs ...kafka.Message) error
}

type Relay struct {
	Repo      *GormRepo
	Publisher Publisher
	BatchSize int
	Interval  time.Duration
}

func (r *Relay) batchSize() int {
	if r.BatchSize <= 0 {
		return 100
	}
	return r.BatchSize
}

// RelayOnce publishes one batch of pending events in id order and marks them
// published. Delivery is at least once: a crash between publish and mark
// re-sends the batch.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	events, err := r.Repo.Pending(ctx, r.batchSize())
	if err != nil {
		return 0, fmt.Errorf("outbox: load pending: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	if err := r.Publisher.Publish(ctx, toMessages(events)...); err != nil {
		return 0, fmt.Errorf("outbox: publish: %w", err)
	}

	if err := r.Repo.MarkPublished(ctx, extractIDs(events), time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("outbox: mark published: %w", err)
	}
	return len(events), nil
}

// Drain relays until no pending events remain.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.RelayOnce(ctx)
		total += n
		if err != nil || n == 0 {
			return total, err
		}
	}
}

// Run relays on every tick until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	l := logging.FromContext(ctx).With("component", "outbox_relay")

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := r.Drain(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				l.Error("relay_error", "error", err)
			}
			if n > 0 {
				l.Info("relay_success", "published", n)
			}
		}
	}
}

func toMessages(events []Event) []kafka.Message {
	res := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		res = append(res, kafka.Message{Topic: ev.Topic, Key: ev.MessageKey, Value: ev.Payload})
	}
	return res
}

func extractIDs(events []Event) []uint64 {
	res := make([]uint64, 0, len(events))
	for _, ev := range events {
		res = append(res, ev.ID)
	}
	return res
}
