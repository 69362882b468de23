package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		receiptsTotal,
		receiptRelayFailuresTotal,
		extractionLatencyMs,
	)
}

var (
	receiptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receipts_total",
			Help: "Receipt submissions by outcome and OCR validity.",
		},
		[]string{"outcome", "valid"}, // outcome: accepted, duplicate, processing_error
	)

	receiptRelayFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "receipt_relay_failures_total",
			Help: "Receipts that could not be relayed to the moderation chat.",
		},
	)

	extractionLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receipt_extraction_latency_ms",
			Help:    "Text extraction latency in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
		},
		[]string{"provider", "result"}, // result: ok, failed
	)
)

func IncReceipt(outcome string, valid bool) {
	v := "false"
	if valid {
		v = "true"
	}
	receiptsTotal.WithLabelValues(norm(outcome), v).Inc()
}

func IncRelayFailure() {
	receiptRelayFailuresTotal.Inc()
}

func ObserveExtraction(provider string, d time.Duration, failed bool) {
	result := "ok"
	if failed {
		result = "failed"
	}
	extractionLatencyMs.WithLabelValues(norm(provider), result).Observe(float64(d.Milliseconds()))
}
