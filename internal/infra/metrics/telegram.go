package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(telegramUpdatesTotal, telegramSendErrorsTotal) }

var (
	telegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_received_total",
			Help: "Updates pulled from Telegram, labeled by type.",
		},
		[]string{"type"}, // message, photo, command, callback, other
	)

	telegramSendErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_send_errors_total",
			Help: "Failed Bot API calls, labeled by method.",
		},
		[]string{"method"},
	)
)

func IncTelegramUpdate(kind string) {
	telegramUpdatesTotal.WithLabelValues(norm(kind)).Inc()
}

func IncTelegramSendError(method string) {
	telegramSendErrorsTotal.WithLabelValues(norm(method)).Inc()
}
