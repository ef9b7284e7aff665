package metrics

import "github.com/prometheus/client_golang/prometheus"

// Dataset and view Prometheus metrics.
var (
	DatasetRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "foodmap",
			Name:      "dataset_records",
			Help:      "Restaurants loaded at startup per price label",
		},
		[]string{"label"},
	)

	DatasetLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "foodmap",
			Name:      "dataset_load_duration_seconds",
			Help:      "Time to fetch and decode the dataset",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	DatasetCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodmap",
			Name:      "dataset_cache_total",
			Help:      "Dataset cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	HoverCallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodmap",
			Name:      "hover_callbacks_total",
			Help:      "Hover callbacks by outcome",
		},
		[]string{"result"}, // "update" / "no_update"
	)
)

var datasetMetricsRegistered bool

// RegisterDatasetMetrics registers dataset and view metrics. Must be called once from main.
func RegisterDatasetMetrics() {
	if datasetMetricsRegistered {
		return
	}
	prometheus.MustRegister(DatasetRecords)
	prometheus.MustRegister(DatasetLoadDuration)
	prometheus.MustRegister(DatasetCacheTotal)
	prometheus.MustRegister(HoverCallbacksTotal)
	datasetMetricsRegistered = true
}
