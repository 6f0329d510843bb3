package httpapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes.
const (
	outcomeExtracted = "extracted"
	outcomeRejected  = "rejected"
	outcomeError     = "error"
)

// Metrics owns the Prometheus registry served at /metrics.
type Metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	uploads         *prometheus.CounterVec
	candidates      prometheus.Counter
	productsSaved   prometheus.Counter
	saveFailures    prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catalog",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "pdf_uploads_total",
			Help:      "PDF uploads by outcome.",
		}, []string{"outcome"}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "pdf_candidates_extracted_total",
			Help:      "Candidate products extracted from uploaded PDFs.",
		}),
		productsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "pdf_products_saved_total",
			Help:      "Extracted products saved to the catalog.",
		}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "pdf_product_save_failures_total",
			Help:      "Extracted products that could not be saved.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.uploads,
		m.candidates,
		m.productsSaved,
		m.saveFailures,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRequest(method, code string, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(method, code).Observe(elapsed.Seconds())
}

func (m *Metrics) observeUpload(outcome string, candidates int) {
	m.uploads.WithLabelValues(outcome).Inc()
	m.candidates.Add(float64(candidates))
}

func (m *Metrics) observeSave(saved, failed int) {
	m.productsSaved.Add(float64(saved))
	m.saveFailures.Add(float64(failed))
}
