package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderPaid          = "order.paid"
	EventOrderStatusChanged = "order.status_changed"
)

// 注文イベント
type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     int64     `json:"orderId"`
	UserID      string    `json:"userId"`
	Status      string    `json:"status"`
	PrevStatus  string    `json:"prevStatus,omitempty"`
	AmountCents int64     `json:"amountCents"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaWriter(brokers, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(splitBrokers(brokers)...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w}
}

// キーは注文単位（同じ注文は同じパーティション）
func (p *KafkaPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%d", ev.OrderID)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}
	return p.w.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Kafka未設定時。ログだけ残す
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	p.log.Debug().
		Str("type", ev.Type).
		Int64("order_id", ev.OrderID).
		Str("status", ev.Status).
		Msg("order event")
	return nil
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		out = []string{"localhost:9092"}
	}
	return out
}
