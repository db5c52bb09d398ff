package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "esports_stats"

var circuitStates = []string{"closed", "half_open", "open"}

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	circuitState   *prometheus.GaugeVec
	scrapeRuns     *prometheus.CounterVec
	scrapeRecords  *prometheus.CounterVec
	scrapeDuration *prometheus.HistogramVec
	upsertRows     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fetch_total",
			Help:      "Page fetches by source type, status code and outcome.",
		}, []string{"source", "code", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching one page, excluding the politeness delay.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		circuitState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "fetch_circuit_state",
			Help:      "1 for the current fetch circuit breaker state.",
		}, []string{"state"}),
		scrapeRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scrape_runs_total",
			Help:      "Scrape runs by kind and status.",
		}, []string{"kind", "status"}),
		scrapeRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "scrape_records_total",
			Help:      "Candidate records produced by scrapers.",
		}, []string{"kind"}),
		scrapeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "scrape_duration_seconds",
			Help:      "Duration of the scraping phase of a run.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
		upsertRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "upsert_rows_total",
			Help:      "Rows written or skipped by the upserter.",
		}, []string{"kind", "result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetchTotal,
		m.fetchDuration,
		m.circuitState,
		m.scrapeRuns,
		m.scrapeRecords,
		m.scrapeDuration,
		m.upsertRows,
	)
	m.ObserveCircuit("closed")
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveFetch(local bool, statusCode int, err error, elapsed time.Duration) {
	source := "network"
	if local {
		source = "file"
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fetchTotal.WithLabelValues(source, strconv.Itoa(statusCode), outcome).Inc()
	m.fetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCircuit(state string) {
	for _, candidate := range circuitStates {
		value := 0.0
		if candidate == state {
			value = 1
		}
		m.circuitState.WithLabelValues(candidate).Set(value)
	}
}

func (m *Metrics) ObserveScrape(kind, status string, records int, elapsed time.Duration) {
	m.scrapeRuns.WithLabelValues(kind, status).Inc()
	m.scrapeRecords.WithLabelValues(kind).Add(float64(records))
	m.scrapeDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveUpsert(kind string, created, updated, skipped int) {
	m.upsertRows.WithLabelValues(kind, "created").Add(float64(created))
	m.upsertRows.WithLabelValues(kind, "updated").Add(float64(updated))
	m.upsertRows.WithLabelValues(kind, "skipped").Add(float64(skipped))
}
