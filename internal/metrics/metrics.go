// Package metrics exposes Prometheus collectors for grid generation, map
// updates and path searches.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes used as the "result" label.
const (
	ResultFound    = "found"
	ResultNoPath   = "no_path"
	ResultRejected = "rejected"
)

var (
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridpath_search_total",
		Help: "Path searches by outcome",
	}, []string{"result"})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridpath_search_duration_seconds",
		Help:    "Wall time of a single A* search including lock wait",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14), // 50us to ~400ms
	})

	searchExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridpath_search_expanded_nodes",
		Help:    "Nodes moved to the closed list per search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	queueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gridpath_queue_length",
		Help: "Path requests waiting for the background worker",
	})

	mapUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridpath_map_updates_total",
		Help: "Runtime map update batches by scope",
	}, []string{"scope"})

	cellsClassified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridpath_cells_classified_total",
		Help: "Cells classified by generation and updates",
	})
)

// ObserveSearch records one finished search.
func ObserveSearch(result string, expanded int, elapsed time.Duration) {
	searchTotal.WithLabelValues(result).Inc()
	searchDuration.Observe(elapsed.Seconds())
	if result != ResultRejected {
		searchExpanded.Observe(float64(expanded))
	}
}

// SetQueueLength publishes the current request queue depth.
func SetQueueLength(n int) {
	queueLength.Set(float64(n))
}

// MapUpdated counts one update batch for scope.
func MapUpdated(scope string) {
	mapUpdates.WithLabelValues(scope).Inc()
}

// CellsClassified adds n classified cells.
func CellsClassified(n int) {
	cellsClassified.Add(float64(n))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
