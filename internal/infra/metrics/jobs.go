package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(workerJobsTotal) }

var workerJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "worker_jobs_total",
		Help: "Jobs handled by the keyed worker pool, labeled by status.",
	},
	[]string{"status"}, // 'processed', 'dropped', 'panicked'
)

func IncWorkerJob(status string) {
	workerJobsTotal.WithLabelValues(norm(status)).Inc()
}
