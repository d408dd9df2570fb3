package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

var ErrNoBrokers = errors.New("kafka: no brokers configured")

type Message struct {
	Topic string
	Key   string
	Value []byte
}

// Producer writes to any topic; the topic is carried per message.
type Producer struct {
	w *kafkago.Writer
}

func NewProducer(brokers []string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}
	return &Producer{w: w}, nil
}

func (p *Producer) Publish(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := p.w.WriteMessages(ctx, toKafkaMessages(msgs)...); err != nil {
		return fmt.Errorf("kafka: write messages: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.w.Close()
}

func toKafkaMessages(msgs []Message) []kafkago.Message {
	res := make([]kafkago.Message, 0, len(msgs))
	for _, m := range msgs {
		res = append(res, kafkago.Message{
			Topic: m.Topic,
			Key:   []byte(m.Key),
			Value: m.Value,
		})
	}
	return res
}
