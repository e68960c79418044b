package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "matcomp"

// Metrics exports comparison and HTTP telemetry to Prometheus.
// A nil *Metrics or one built without a registerer records nothing.
type Metrics struct {
	searches       *prometheus.CounterVec
	expansions     *prometheus.CounterVec
	degradedItems  prometheus.Counter
	comparisonTime prometheus.Histogram
	comparisonSize prometheus.Histogram
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers the service metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}

	m := &Metrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_searches_total",
			Help:      "Catalog searches by kind (primary, alternate) and outcome.",
		}, []string{"kind", "outcome"}),
		expansions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "term_expansions_total",
			Help:      "Term expansion calls by outcome.",
		}, []string{"outcome"}),
		degradedItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_items_total",
			Help:      "Items returned without matches because matching failed.",
		}),
		comparisonTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "comparison_duration_seconds",
			Help:      "Duration of full materials comparisons in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		comparisonSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "comparison_items",
			Help:      "Number of items per comparison request.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 40, 50},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.searches,
		m.expansions,
		m.degradedItems,
		m.comparisonTime,
		m.comparisonSize,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// ObserveSearch counts one catalog search.
func (m *Metrics) ObserveSearch(kind, outcome string) {
	if m == nil || m.searches == nil {
		return
	}
	m.searches.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

// ObserveExpansion counts one term expansion call.
func (m *Metrics) ObserveExpansion(outcome string) {
	if m == nil || m.expansions == nil {
		return
	}
	m.expansions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncDegradedItem counts an item whose matching failed.
func (m *Metrics) IncDegradedItem() {
	if m == nil || m.degradedItems == nil {
		return
	}
	m.degradedItems.Inc()
}

// ObserveComparison records the size and duration of a completed comparison.
func (m *Metrics) ObserveComparison(items int, duration time.Duration) {
	if m == nil || m.comparisonTime == nil {
		return
	}
	m.comparisonTime.Observe(duration.Seconds())
	m.comparisonSize.Observe(float64(items))
}

// ObserveHTTPRequest records one served HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	route = normalizeLabel(route)
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
