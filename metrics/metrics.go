package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes.
const (
	OutcomeHits      = "hits"
	OutcomeNoMatches = "no_matches"
	OutcomeError     = "error"
)

// Metrics holds the subseek collectors.
type Metrics struct {
	searchesTotal       *prometheus.CounterVec
	searchDuration      prometheus.Histogram
	documentsScanned    prometheus.Counter
	documentsSkipped    *prometheus.CounterVec
	searchCandidates    prometheus.Histogram
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
// A nil reg means prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		searchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "subseek",
				Name:      "searches_total",
				Help:      "Total number of searches by outcome",
			},
			[]string{"outcome"},
		),
		searchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "subseek",
				Name:      "search_duration_seconds",
				Help:      "Duration of completed searches in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		documentsScanned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "subseek",
				Name:      "documents_scanned_total",
				Help:      "Total number of documents scored",
			},
		),
		documentsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "subseek",
				Name:      "documents_skipped_total",
				Help:      "Total number of documents skipped because they could not be loaded",
			},
			[]string{"reason"},
		),
		searchCandidates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "subseek",
				Name:      "search_candidates",
				Help:      "Number of fragments passing both thresholds per search, before truncation",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "subseek",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "subseek",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}

	collectors := []prometheus.Collector{
		m.searchesTotal,
		m.searchDuration,
		m.documentsScanned,
		m.documentsSkipped,
		m.searchCandidates,
		m.httpRequestDuration,
		m.httpRequestsTotal,
	}
	var errs []error
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return m, nil
}

// Handler serves the metrics gathered by g.
// A nil g means prometheus.DefaultGatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
