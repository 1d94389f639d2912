package orgimport

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	rowsTotal     *prometheus.CounterVec
	runsTotal     *prometheus.CounterVec
	batchLatency  *prometheus.HistogramVec
	batchFailures prometheus.Counter
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		rowsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "org_import",
			Name:      "rows_total",
			Help:      "Total number of organization import rows by outcome.",
		}, []string{"outcome", "dry_run"}),
		runsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "org_import",
			Name:      "runs_total",
			Help:      "Total number of organization import runs.",
		}, []string{"dry_run", "cancelled"}),
		batchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "org_import",
			Name:      "batch_duration_seconds",
			Help:      "Latency distribution for one import batch.",
			Buckets: []float64{
				0.005, 0.01, 0.025, 0.05,
				0.1, 0.25, 0.5,
				1, 2.5, 5, 10,
			},
		}, []string{"result"}),
		batchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "org_import",
			Name:      "batch_failures_total",
			Help:      "Total number of batches that failed as a whole.",
		}),
	}
})

func observeBatch(res batchResult, dryRun bool, elapsed time.Duration) {
	m := metricsSingleton()
	dry := strconv.FormatBool(dryRun)
	m.rowsTotal.WithLabelValues("success", dry).Add(float64(res.success))
	m.rowsTotal.WithLabelValues("failed", dry).Add(float64(res.failed))
	m.rowsTotal.WithLabelValues("skipped", dry).Add(float64(res.skipped))

	result := "ok"
	if res.catastrophic {
		result = "failed"
		m.batchFailures.Inc()
	}
	m.batchLatency.WithLabelValues(result).Observe(elapsed.Seconds())
}

func observeRun(dryRun, cancelled bool) {
	metricsSingleton().runsTotal.WithLabelValues(strconv.FormatBool(dryRun), strconv.FormatBool(cancelled)).Inc()
}
