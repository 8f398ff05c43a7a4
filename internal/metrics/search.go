package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search and import metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esmodel",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by model and status",
		},
		[]string{"model", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "esmodel",
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds, hydration included",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"model"},
	)

	ImportDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esmodel",
			Name:      "import_documents_total",
			Help:      "Documents sent by bulk import, by result",
		},
		[]string{"model", "result"}, // "ok" / "failed"
	)

	ImportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "esmodel",
			Name:      "import_duration_seconds",
			Help:      "Full import duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
		[]string{"model"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search and import metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal, SearchDuration, ImportDocumentsTotal, ImportDuration)
	searchMetricsRegistered = true
}

// ObserveSearch records one search.
func ObserveSearch(model string, start time.Time, err error) {
	SearchRequestsTotal.WithLabelValues(model, status(err)).Inc()
	SearchDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
}

// ObserveImport records one import run.
func ObserveImport(model string, start time.Time, ok, failed int) {
	ImportDocumentsTotal.WithLabelValues(model, "ok").Add(float64(ok))
	if failed > 0 {
		ImportDocumentsTotal.WithLabelValues(model, "failed").Add(float64(failed))
	}
	ImportDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
