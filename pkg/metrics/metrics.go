package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	subsystem = "pvb_service"

	lifecycleTransitionsTotal = "lifecycle_transitions_total"
	bulkItemsTotal            = "bulk_items_total"

	operationLabel = "operation"
	resultLabel    = "result"
)

/**
* Metrics definition
**/
var lifecycleTransitionsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      lifecycleTransitionsTotal,
		Help:      "number of lifecycle transitions partitioned by operation and result",
	},
	[]string{operationLabel, resultLabel},
)

var bulkItemsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      bulkItemsTotal,
		Help:      "number of per-item bulk outcomes partitioned by operation and result",
	},
	[]string{operationLabel, resultLabel},
)

func IncreaseLifecycleTransitionMetric(operation, result string) {
	lifecycleTransitionsTotalMetric.With(prometheus.Labels{
		operationLabel: operation,
		resultLabel:    result,
	}).Inc()
}

func IncreaseBulkItemMetric(operation, result string) {
	bulkItemsTotalMetric.With(prometheus.Labels{
		operationLabel: operation,
		resultLabel:    result,
	}).Inc()
}

// NewPrometheusMetricsHandler exposes the default registry for the metrics
// server.
func NewPrometheusMetricsHandler() http.Handler {
	return promhttp.Handler()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(lifecycleTransitionsTotalMetric)
	prometheus.MustRegister(bulkItemsTotalMetric)
}
