package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(storeSize, storeErrorsTotal)
}

var (
	// Nothing is ever evicted from the stores; this gauge is how operators
	// watch them grow.
	storeSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "store_entries",
			Help: "Entries held by each in-process or external store.",
		},
		[]string{"store"}, // sessions, receipts, referrers
	)

	storeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Store operations that returned an error.",
		},
		[]string{"store", "op"},
	)
)

func SetStoreSize(store string, n int) {
	storeSize.WithLabelValues(norm(store)).Set(float64(n))
}

func IncStoreError(store, op string) {
	storeErrorsTotal.WithLabelValues(norm(store), norm(op)).Inc()
}
