package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	global *Metrics
	once   sync.Once
)

// Metrics holds the Prometheus collectors for scoutdesk.
//
//   - scoutdesk_scout_snapshots_total - scout statistics snapshots computed
//   - scoutdesk_drafts_staged_total{kind} - drafts saved to the stager
//   - scoutdesk_commits_total{kind,result} - confirm/commit attempts
//   - scoutdesk_uploads_total{result} - job-posting image uploads
//   - scoutdesk_group_cache_total{result} - company group cache lookups (hit/miss)
//   - scoutdesk_group_deletes_total{result} - cascade deletions
//   - scoutdesk_http_requests_total{method,route,status}
//   - scoutdesk_http_request_duration_seconds{method,route}
type Metrics struct {
	ScoutSnapshots prometheus.Counter
	DraftsStaged   *prometheus.CounterVec
	Commits        *prometheus.CounterVec
	Uploads        *prometheus.CounterVec
	GroupCache     *prometheus.CounterVec
	GroupDeletes   *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// New registers the collectors once per process and returns them
func New() *Metrics {
	once.Do(func() {
		global = &Metrics{
			ScoutSnapshots: promauto.NewCounter(prometheus.CounterOpts{
				Name: "scoutdesk_scout_snapshots_total",
				Help: "Scout statistics snapshots computed",
			}),
			DraftsStaged: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "scoutdesk_drafts_staged_total",
				Help: "Edit drafts saved to the stager",
			}, []string{"kind"}),
			Commits: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "scoutdesk_commits_total",
				Help: "Confirmed edit commits by outcome",
			}, []string{"kind", "result"}),
			Uploads: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "scoutdesk_uploads_total",
				Help: "Job posting image uploads by outcome",
			}, []string{"result"}),
			GroupCache: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "scoutdesk_group_cache_total",
				Help: "Company group cache lookups",
			}, []string{"result"}),
			GroupDeletes: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "scoutdesk_group_deletes_total",
				Help: "Company group cascade deletions by outcome",
			}, []string{"result"}),
			HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "scoutdesk_http_requests_total",
				Help: "HTTP requests by method, route and status",
			}, []string{"method", "route", "status"}),
			HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "scoutdesk_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			}, []string{"method", "route"}),
		}
	})
	return global
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveCommit counts a commit attempt; nil receivers are allowed
func (m *Metrics) ObserveCommit(kind string, err error) {
	if m == nil {
		return
	}
	m.Commits.WithLabelValues(kind, resultLabel(err)).Inc()
}

func (m *Metrics) ObserveStage(kind string) {
	if m == nil {
		return
	}
	m.DraftsStaged.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveUpload(err error) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) ObserveSnapshot() {
	if m == nil {
		return
	}
	m.ScoutSnapshots.Inc()
}

func (m *Metrics) ObserveGroupCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.GroupCache.WithLabelValues("hit").Inc()
		return
	}
	m.GroupCache.WithLabelValues("miss").Inc()
}

func (m *Metrics) ObserveGroupDelete(err error) {
	if m == nil {
		return
	}
	m.GroupDeletes.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
