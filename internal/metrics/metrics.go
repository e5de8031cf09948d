package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	TripActions         *prometheus.CounterVec
	OracleRequests      *prometheus.CounterVec
	PersistenceFailures *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
}

// NewMetrics creates metrics on a private registry so that several
// instances can coexist in one process (tests).
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TripActions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trip_actions_total",
			Help:      "Trip lifecycle actions by outcome",
		}, []string{"action", "outcome"}),
		OracleRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Prediction requests by operation and the source that answered",
		}, []string{"operation", "source"}),
		PersistenceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Best-effort writes that failed to persist",
		}, []string{"entity"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The helpers below accept a nil receiver so components can run without metrics.

// ObserveTripAction counts one dispatched trip action
func (m *Metrics) ObserveTripAction(action, outcome string) {
	if m == nil {
		return
	}
	m.TripActions.WithLabelValues(action, outcome).Inc()
}

// ObserveOracle counts which source answered a prediction
func (m *Metrics) ObserveOracle(operation, source string) {
	if m == nil {
		return
	}
	m.OracleRequests.WithLabelValues(operation, source).Inc()
}

// ObservePersistenceFailure counts a swallowed persistence error
func (m *Metrics) ObservePersistenceFailure(entity string) {
	if m == nil {
		return
	}
	m.PersistenceFailures.WithLabelValues(entity).Inc()
}

// ObserveRequest records HTTP latency
func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, method, status).Observe(seconds)
}
