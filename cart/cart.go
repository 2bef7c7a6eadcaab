package cart

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mytheresa/go-bulk-cart/models"
)

// Recorder observes cart activity, typically for metrics.
type Recorder interface {
	Transition(intent string, err error)
	PersistFailed()
	ItemCount(n int)
}

type nopRecorder struct{}

func (nopRecorder) Transition(string, error) {}
func (nopRecorder) PersistFailed()           {}
func (nopRecorder) ItemCount(int)            {}

// Change is delivered to subscribers after a transition altered the cart.
type Change struct {
	Intent string
	State  State
}

type Option func(*Cart)

func WithLogger(l *zap.Logger) Option {
	return func(c *Cart) { c.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(c *Cart) { c.recorder = r }
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Cart) { c.tracer = t }
}

// Cart owns the session's cart state. All transitions go through one mutex,
// so they apply atomically and in order; readers get copies.
type Cart struct {
	mu        sync.Mutex
	state     State
	persister *Persister

	// pending holds changes in dispatch order until delivered. Only one
	// goroutine delivers at a time; it never holds mu.
	queueMu    sync.Mutex
	pending    []Change
	delivering bool

	subMu       sync.Mutex
	nextSubID   int
	subscribers map[int]func(Change)

	logger   *zap.Logger
	recorder Recorder
	tracer   trace.Tracer
}

// New hydrates a cart from persister.
func New(ctx context.Context, persister *Persister, opts ...Option) *Cart {
	c := &Cart{
		persister:   persister,
		subscribers: make(map[int]func(Change)),
		logger:      zap.NewNop(),
		recorder:    nopRecorder{},
		tracer:      otel.Tracer("github.com/mytheresa/go-bulk-cart/cart"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.state = persister.Load(ctx)
	c.recorder.ItemCount(c.state.ItemCount)
	c.logger.Info("cart restored",
		zap.Int("lines", len(c.state.Items)),
		zap.Int("item_count", c.state.ItemCount))
	return c
}

// Dispatch applies in. On success the new state is saved (when it differs
// from the previous one) and subscribers are notified. On failure the cart
// is unchanged and the rule error is returned with the current state.
func (c *Cart) Dispatch(ctx context.Context, in Intent) (State, error) {
	ctx, span := c.tracer.Start(ctx, "cart."+in.Name(),
		trace.WithAttributes(attribute.String("cart.intent", in.Name())))
	defer span.End()

	c.mu.Lock()
	next, err := Reduce(c.state, in)
	if err != nil {
		current := c.state.Clone()
		c.mu.Unlock()

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.recorder.Transition(in.Name(), err)
		c.logger.Info("cart transition rejected", zap.String("intent", in.Name()), zap.Error(err))
		return current, err
	}

	changed := !next.Equal(c.state)
	c.state = next
	if changed {
		if err := c.persister.Save(ctx, next); err != nil {
			c.recorder.PersistFailed()
			span.AddEvent("cart.persist_failed")
		}
	}
	snapshot := next.Clone()
	if changed {
		// Queued under mu so delivery follows dispatch order.
		c.enqueue(Change{Intent: in.Name(), State: next})
	}
	c.mu.Unlock()

	span.SetAttributes(
		attribute.Int("cart.lines", len(snapshot.Items)),
		attribute.Int("cart.item_count", snapshot.ItemCount),
		attribute.Bool("cart.changed", changed))
	c.recorder.Transition(in.Name(), nil)
	c.recorder.ItemCount(snapshot.ItemCount)

	if changed {
		c.deliver()
	}
	return snapshot, nil
}

func (c *Cart) Add(ctx context.Context, product models.Product, quantity int, color, size string) (State, error) {
	return c.Dispatch(ctx, AddToCart{Product: product, Quantity: quantity, Color: color, Size: size})
}

func (c *Cart) Remove(ctx context.Context, productID uint, color, size string) (State, error) {
	return c.Dispatch(ctx, RemoveFromCart{ProductID: productID, Color: color, Size: size})
}

func (c *Cart) UpdateQuantity(ctx context.Context, productID uint, quantity int, color, size string) (State, error) {
	return c.Dispatch(ctx, UpdateQuantity{ProductID: productID, Quantity: quantity, Color: color, Size: size})
}

func (c *Cart) Clear(ctx context.Context) (State, error) {
	return c.Dispatch(ctx, ClearCart{})
}

// Snapshot returns a copy of the current state.
func (c *Cart) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

func (c *Cart) Item(productID uint, color, size string) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Item(productID, color, size)
}

func (c *Cart) Contains(productID uint, color, size string) bool {
	_, ok := c.Item(productID, color, size)
	return ok
}

// Subscribe registers fn for changes. Calling the returned function stops
// delivery. Changes are delivered one at a time in dispatch order, with no
// cart lock held, so fn may read the cart or dispatch. A dispatch made while
// another goroutine is delivering can return before its own change reaches
// subscribers.
func (c *Cart) Subscribe(fn func(Change)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subscribers, id)
		c.subMu.Unlock()
	}
}

func (c *Cart) enqueue(ch Change) {
	c.queueMu.Lock()
	c.pending = append(c.pending, ch)
	c.queueMu.Unlock()
}

// deliver drains the pending queue unless another goroutine already is.
// The emptiness check and the release of the delivering flag happen under
// one lock, so a queued change is never left behind.
func (c *Cart) deliver() {
	c.queueMu.Lock()
	if c.delivering {
		c.queueMu.Unlock()
		return
	}
	c.delivering = true
	c.queueMu.Unlock()

	drained := false
	defer func() {
		if !drained {
			// A subscriber panicked; let the next dispatch resume delivery.
			c.queueMu.Lock()
			c.delivering = false
			c.queueMu.Unlock()
		}
	}()

	for {
		c.queueMu.Lock()
		if len(c.pending) == 0 {
			c.delivering = false
			drained = true
			c.queueMu.Unlock()
			return
		}
		ch := c.pending[0]
		c.pending[0] = Change{}
		c.pending = c.pending[1:]
		c.queueMu.Unlock()

		c.notify(ch)
	}
}

func (c *Cart) notify(ch Change) {
	c.subMu.Lock()
	fns := make([]func(Change), 0, len(c.subscribers))
	for id := 0; id < c.nextSubID; id++ {
		if fn, ok := c.subscribers[id]; ok {
			fns = append(fns, fn)
		}
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(Change{Intent: ch.Intent, State: ch.State.Clone()})
	}
}
