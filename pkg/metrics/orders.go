package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OrderResultPlaced   = "placed"
	OrderResultRejected = "rejected"
	OrderResultEmpty    = "empty"
)

// OrderMetrics counts place-order outcomes.
type OrderMetrics struct {
	placed *prometheus.CounterVec
	items  prometheus.Counter
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shopcart_place_order_total",
		Help: "Place-order attempts by result.",
	}, []string{"result"})
	items := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopcart_ordered_items_total",
		Help: "Line items handed to the order service.",
	})
	reg.MustRegister(placed, items)
	return &OrderMetrics{placed: placed, items: items}
}

// IncResult increments the counter for a place-order outcome.
func (m *OrderMetrics) IncResult(result string) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.WithLabelValues(normalizeLabel(result)).Inc()
}

// AddItems adds n to the ordered line item counter.
func (m *OrderMetrics) AddItems(n int) {
	if m == nil || m.items == nil || n <= 0 {
		return
	}
	m.items.Add(float64(n))
}
