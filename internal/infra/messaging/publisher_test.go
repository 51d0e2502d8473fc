package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWriter struct{ mock.Mock }

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error { return m.Called().Error(0) }

func TestKafkaPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	w := new(mockWriter)

	var sent []kafka.Message
	w.On("WriteMessages", ctx, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).([]kafka.Message)
	}).Return(nil)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	err := NewKafkaPublisher(w).Publish(ctx, OrderEvent{
		Type: EventOrderPaid, OrderID: 42, UserID: "u-1", Status: "PAID", AmountCents: 21000, OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)

	assert.Equal(t, "order-42", string(sent[0].Key))
	assert.Equal(t, "type", sent[0].Headers[0].Key)
	assert.Equal(t, EventOrderPaid, string(sent[0].Headers[0].Value))

	var got OrderEvent
	require.NoError(t, json.Unmarshal(sent[0].Value, &got))
	assert.Equal(t, int64(21000), got.AmountCents)
	assert.True(t, at.Equal(got.OccurredAt))
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	ctx := context.Background()
	w := new(mockWriter)
	w.On("WriteMessages", ctx, mock.Anything).Return(errors.New("broker down"))

	err := NewKafkaPublisher(w).Publish(ctx, OrderEvent{Type: EventOrderCreated, OrderID: 1})
	assert.EqualError(t, err, "broker down")
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf).Level(zerolog.DebugLevel))

	require.NoError(t, p.Publish(context.Background(), OrderEvent{Type: EventOrderStatusChanged, OrderID: 3, Status: "SHIPPED"}))
	assert.Contains(t, buf.String(), `"order_id":3`)
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:1", "b:2"}, splitBrokers(" a:1, ,b:2"))
	assert.Equal(t, []string{"localhost:9092"}, splitBrokers(""))
}
