// Package prometheus instruments docseek services with Prometheus metrics.
//
// Metrics are kept in a private registry and exported once per run in the
// node-exporter textfile format.
package prometheus

import (
	"time"

	"github.com/fwojciec/docseek"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "docseek"

// Metrics holds the collectors for one run.
type Metrics struct {
	registry *prometheus.Registry

	fetchesTotal   *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
	fetchBytes     prometheus.Counter
	cacheSearches  *prometheus.CounterVec
	cacheScore     prometheus.Histogram
	cacheAdds      *prometheus.CounterVec
	oracleCalls    *prometheus.CounterVec
	oracleDuration *prometheus.HistogramVec
	answersTotal   *prometheus.CounterVec
	pagesVisited   prometheus.Histogram
}

// NewMetrics creates Metrics registered with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		fetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "page_fetches_total",
			Help:      "Total page fetches by result code",
		}, []string{"status"}),

		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "page_fetch_duration_seconds",
			Help:      "Page fetch and extraction duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		fetchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "page_text_bytes_total",
			Help:      "Total bytes of page text extracted",
		}),

		cacheSearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_searches_total",
			Help:      "Total semantic cache searches by result code",
		}, []string{"status"}),

		cacheScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "cache_top_score",
			Help:      "Similarity of the best cache match",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),

		cacheAdds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_adds_total",
			Help:      "Total pages added to the semantic cache by result code",
		}, []string{"status"}),

		oracleCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "oracle_calls_total",
			Help:      "Total oracle calls by operation and result code",
		}, []string{"op", "status"}),

		oracleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "oracle_call_duration_seconds",
			Help:      "Oracle call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"op"}),

		answersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "answers_total",
			Help:      "Total questions resolved by status and cache use",
		}, []string{"status", "cache"}),

		pagesVisited: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "question_pages_visited",
			Help:      "Pages examined per question",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
	}
	m.registry.MustRegister(
		m.fetchesTotal,
		m.fetchDuration,
		m.fetchBytes,
		m.cacheSearches,
		m.cacheScore,
		m.cacheAdds,
		m.oracleCalls,
		m.oracleDuration,
		m.answersTotal,
		m.pagesVisited,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveAnswer records the outcome of one question.
func (m *Metrics) ObserveAnswer(a *docseek.Answer) {
	if a == nil {
		return
	}
	cache := "miss"
	if a.CacheHit {
		cache = "hit"
	}
	m.answersTotal.WithLabelValues(string(a.Status), cache).Inc()
	m.pagesVisited.Observe(float64(len(a.Visited)))
}

// WriteTextfile writes all metrics to path in the textfile collector format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return docseek.Errorf(docseek.EINTERNAL, "write metrics: %v", err)
	}
	return nil
}

// status returns the label value for a call outcome.
func status(err error) string {
	if err == nil {
		return "ok"
	}
	return docseek.ErrorCode(err)
}

func since(begin time.Time) float64 {
	return time.Since(begin).Seconds()
}
