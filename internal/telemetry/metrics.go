package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cinematheque"

// Metrics holds the prometheus collectors of the client.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	refreshes       *prometheus.CounterVec
	imports         *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	collectionSize  prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Collaborator requests by target, operation and outcome.",
		}, []string{"target", "operation", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Collaborator request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"target", "operation"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Collection and stats refreshes by kind, mode and outcome.",
		}, []string{"kind", "mode", "outcome"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Metadata searches and imports by stage and outcome.",
		}, []string{"stage", "outcome"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Collection mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		collectionSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_records",
			Help:      "Records in the last fetched collection.",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.refreshes,
		m.imports,
		m.mutations,
		m.collectionSize,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveRequest records one collaborator request
func (m *Metrics) ObserveRequest(target, operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(target, operation, outcome(err)).Inc()
	m.requestDuration.WithLabelValues(target, operation).Observe(time.Since(started).Seconds())
}

// ObserveRefresh records a list or stats refresh
func (m *Metrics) ObserveRefresh(kind string, silent bool, err error) {
	if m == nil {
		return
	}
	mode := "visible"
	if silent {
		mode = "silent"
	}
	m.refreshes.WithLabelValues(kind, mode, outcome(err)).Inc()
}

// ObserveImport records a search or details stage
func (m *Metrics) ObserveImport(stage string, err error) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(stage, outcome(err)).Inc()
}

// ObserveMutation records a create, update or delete
func (m *Metrics) ObserveMutation(operation string, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, outcome(err)).Inc()
}

// SetCollectionSize records the size of the cached collection
func (m *Metrics) SetCollectionSize(n int) {
	if m == nil {
		return
	}
	m.collectionSize.Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
