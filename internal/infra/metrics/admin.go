package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(adminRequestsTotal) }

var adminRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "admin_http_requests_total",
		Help: "Requests served by the admin HTTP surface.",
	},
	[]string{"route", "code"},
)

func IncAdminRequest(route, code string) {
	adminRequestsTotal.WithLabelValues(norm(route), norm(code)).Inc()
}
