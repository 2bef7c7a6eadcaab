// Package events forwards cart changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mytheresa/go-bulk-cart/cart"
)

// ErrDisabled is returned by NewKafkaWriter when no brokers are configured.
var ErrDisabled = errors.New("kafka disabled")

// CartChanged is the message published after every cart change.
type CartChanged struct {
	Intent     string     `json:"intent"`
	Cart       cart.State `json:"cart"`
	OccurredAt time.Time  `json:"occurredAt"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher sends CartChanged messages keyed by the cart's storage key.
// Changes handed to Handle are queued and written by a goroutine the
// Publisher owns, so a slow broker never holds up the cart.
type Publisher struct {
	writer  messageWriter
	key     string
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
	queue  chan queued
	done   chan struct{}
}

type queued struct {
	change cart.Change
	at     time.Time
}

// QueueSize is how many changes may wait for the broker before new ones
// are dropped.
const QueueSize = 256

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewKafkaWriter(brokers []string, topic string) (*kafka.Writer, error) {
	if len(brokers) == 0 {
		return nil, ErrDisabled
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}, nil
}

func NewPublisher(w messageWriter, key string, logger *zap.Logger) *Publisher {
	return newPublisher(w, key, logger, QueueSize)
}

func newPublisher(w messageWriter, key string, logger *zap.Logger, size int) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Publisher{
		writer:  w,
		key:     key,
		timeout: 5 * time.Second,
		logger:  logger,
		now:     time.Now,
		queue:   make(chan queued, size),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish encodes ch and writes it to Kafka.
func (p *Publisher) Publish(ctx context.Context, ch cart.Change) error {
	return p.publish(ctx, ch, p.now())
}

func (p *Publisher) publish(ctx context.Context, ch cart.Change, at time.Time) error {
	data, err := json.Marshal(CartChanged{
		Intent:     ch.Intent,
		Cart:       ch.State,
		OccurredAt: at.UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "encode cart change")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(p.key), Value: data}); err != nil {
		return errors.Wrapf(err, "publish %s", ch.Intent)
	}
	return nil
}

// Handle is a cart subscriber. It only queues the change; when the queue is
// full or the Publisher is closed the change is dropped and logged.
func (p *Publisher) Handle(ch cart.Change) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("cart change not published: publisher closed", zap.String("intent", ch.Intent))
		return
	}
	select {
	case p.queue <- queued{change: ch, at: p.now()}:
	default:
		p.logger.Warn("cart change not published: queue full", zap.String("intent", ch.Intent))
	}
}

// Close stops accepting changes and waits until the queued ones are written.
func (p *Publisher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
}

func (p *Publisher) run() {
	defer close(p.done)
	for q := range p.queue {
		if err := p.publish(context.Background(), q.change, q.at); err != nil {
			p.logger.Warn("cart change not published", zap.String("intent", q.change.Intent), zap.Error(err))
		}
	}
}
