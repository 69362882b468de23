package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		dialogEventsTotal,
		dialogTransitionsTotal,
		dialogPanicsTotal,
		referralsRecordedTotal,
	)
}

var (
	dialogEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_events_total",
			Help: "Inbound user events by kind.",
		},
		[]string{"kind"}, // start, menu, product_choice, photo, text, callback
	)

	dialogTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_transitions_total",
			Help: "Dialog state transitions by source and target state.",
		},
		[]string{"from", "to"},
	)

	dialogPanicsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dialog_panics_total",
			Help: "Events whose handling panicked and was recovered.",
		},
	)

	referralsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referrals_recorded_total",
			Help: "Referral links seen on /start, by result.",
		},
		[]string{"result"}, // added, existing, invalid, self
	)
)

func IncDialogEvent(kind string) {
	dialogEventsTotal.WithLabelValues(norm(kind)).Inc()
}

func IncTransition(from, to string) {
	dialogTransitionsTotal.WithLabelValues(norm(from), norm(to)).Inc()
}

func IncDialogPanic() {
	dialogPanicsTotal.Inc()
}

func IncReferral(result string) {
	referralsRecordedTotal.WithLabelValues(norm(result)).Inc()
}
