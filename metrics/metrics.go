package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mytheresa/go-bulk-cart/cart"
)

// CartMetrics records cart transitions. It satisfies cart.Recorder.
type CartMetrics struct {
	Transitions     *prometheus.CounterVec
	PersistFailures prometheus.Counter
	Items           prometheus.Gauge
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulkcart",
		Subsystem: "cart",
		Name:      "transitions_total",
		Help:      "Cart transitions by intent and outcome.",
	}, []string{"intent", "result"})
	persistFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bulkcart",
		Subsystem: "cart",
		Name:      "persist_failures_total",
		Help:      "Cart saves that failed and were skipped.",
	})
	items := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bulkcart",
		Subsystem: "cart",
		Name:      "item_count",
		Help:      "Units currently in the cart.",
	})

	reg.MustRegister(transitions, persistFailures, items)
	return &CartMetrics{Transitions: transitions, PersistFailures: persistFailures, Items: items}
}

func (m *CartMetrics) Transition(intent string, err error) {
	m.Transitions.WithLabelValues(intent, result(err)).Inc()
}

func (m *CartMetrics) PersistFailed() {
	m.PersistFailures.Inc()
}

func (m *CartMetrics) ItemCount(n int) {
	m.Items.Set(float64(n))
}

// result maps a transition error to a low-cardinality label.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, cart.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, cart.ErrInactiveProduct):
		return "inactive_product"
	case errors.Is(err, cart.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, cart.ErrQuantityBelowMinimum):
		return "below_minimum"
	case errors.Is(err, cart.ErrQuantityAboveMaximum):
		return "above_maximum"
	case errors.Is(err, cart.ErrItemNotFound):
		return "item_not_found"
	default:
		return "error"
	}
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
