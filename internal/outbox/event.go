package outbox

import (
	"encoding/json"
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
)

const (
	TypeOrderCreated       = "order_created"
	TypeOrderPaid          = "order_paid"
	TypeOrderPaymentFailed = "order_payment_failed"
	TypeOrderStatusChanged = "order_status_changed"
)

// Event is a message recorded in the same transaction as the state change it
// describes and published to kafka afterwards.
type Event struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	Topic       string     `gorm:"not null"`
	MessageKey  string     `gorm:"not null"`
	Type        string     `gorm:"not null"`
	Payload     []byte     `gorm:"not null"`
	Status      Status     `gorm:"index;not null;default:pending"`
	CreatedAt   time.Time
	PublishedAt *time.Time
}

func (Event) TableName() string { return "outbox_events" }

type envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

func NewEvent(topic, key, typ string, data any) (*Event, error) {
	payload, err := json.Marshal(envelope{Type: typ, OccurredAt: time.Now().UTC(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("outbox: marshal %s: %w", typ, err)
	}
	return &Event{
		Topic:      topic,
		MessageKey: key,
		Type:       typ,
		Payload:    payload,
		Status:     StatusPending,
	}, nil
}
