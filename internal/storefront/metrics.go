package storefront

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	CartMutations *prometheus.CounterVec
	Checkouts     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CartMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_cart_mutations_total",
				Help: "Cart changes that were persisted",
			},
			[]string{"op"},
		),
		Checkouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_checkouts_total",
				Help: "Finished checkout attempts by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(m.CartMutations, m.Checkouts)
	return m
}

func (m *Metrics) cartMutation(op string) {
	if m == nil {
		return
	}
	m.CartMutations.WithLabelValues(op).Inc()
}

func (m *Metrics) checkout(result string) {
	if m == nil {
		return
	}
	if result == "" {
		result = "success"
	}
	m.Checkouts.WithLabelValues(result).Inc()
}
