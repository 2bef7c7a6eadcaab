package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/go-bulk-cart/cart"
	"github.com/mytheresa/go-bulk-cart/models"
	"github.com/mytheresa/go-bulk-cart/storage"
)

// --- Mock Writer ---

type MockWriter struct {
	Err      error
	Block    chan struct{} // when set, writes wait until it is closed
	Messages []kafka.Message

	mu sync.Mutex
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.Block != nil {
		<-m.Block
	}
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msgs...)
	return nil
}

func (m *MockWriter) written() []kafka.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]kafka.Message(nil), m.Messages...)
}

// --- Tests ---

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092,"))
	assert.Empty(t, ParseBrokers(""))
}

func TestNewKafkaWriterDisabled(t *testing.T) {
	_, err := NewKafkaWriter(nil, "cart.events")
	assert.ErrorIs(t, err, ErrDisabled)

	w, err := NewKafkaWriter([]string{"localhost:9092"}, "cart.events")
	require.NoError(t, err)
	assert.Equal(t, "cart.events", w.Topic)
}

func TestPublisherForwardsCartChanges(t *testing.T) {
	writer := &MockWriter{}
	pub := NewPublisher(writer, "cart", nil)
	pub.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	c := cart.New(ctx, cart.NewPersister(storage.NewMemoryStore(storage.DefaultKey), nil))
	c.Subscribe(pub.Handle)

	product := models.Product{ID: 3, BasePrice: decimal.NewFromInt(250), Stock: 10, Status: models.StatusActive}
	_, err := c.Add(ctx, product, 2, "green", "")
	require.NoError(t, err)
	_, err = c.Remove(ctx, 99, "", "")
	require.NoError(t, err)
	pub.Close()

	messages := writer.written()
	require.Len(t, messages, 1, "no-op transitions are not published")
	msg := messages[0]
	assert.Equal(t, "cart", string(msg.Key))

	var got struct {
		Intent     string    `json:"intent"`
		OccurredAt time.Time `json:"occurredAt"`
		Cart       struct {
			ItemCount int `json:"itemCount"`
		} `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "add_to_cart", got.Intent)
	assert.Equal(t, 2, got.Cart.ItemCount)
	assert.True(t, got.OccurredAt.Equal(pub.now()))
}

func TestPublisherErrors(t *testing.T) {
	writer := &MockWriter{Err: errors.New("broker down")}
	pub := NewPublisher(writer, "cart", nil)

	err := pub.Publish(context.Background(), cart.Change{Intent: "clear_cart", State: cart.Empty()})
	assert.ErrorContains(t, err, "broker down")

	assert.NotPanics(t, func() { pub.Handle(cart.Change{Intent: "clear_cart", State: cart.Empty()}) })
	pub.Close()
	assert.NotPanics(t, func() { pub.Handle(cart.Change{Intent: "clear_cart", State: cart.Empty()}) })
}

func TestSlowBrokerDoesNotBlockCart(t *testing.T) {
	writer := &MockWriter{Block: make(chan struct{})}
	pub := newPublisher(writer, "cart", nil, 2)

	ctx := context.Background()
	c := cart.New(ctx, cart.NewPersister(storage.NewMemoryStore(storage.DefaultKey), nil))
	c.Subscribe(pub.Handle)
	product := models.Product{ID: 3, BasePrice: decimal.NewFromInt(250), Stock: 100, Status: models.StatusActive}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			_, _ = c.Add(ctx, product, 1, "", "")
			_ = c.Snapshot()
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cart transitions waited for the broker")
	}
	assert.Equal(t, 5, c.Snapshot().ItemCount)

	close(writer.Block)
	pub.Close()

	// One change is held by the writer, two fit the queue, the rest are dropped.
	messages := writer.written()
	assert.GreaterOrEqual(t, len(messages), 2)
	assert.Less(t, len(messages), 5)
}
