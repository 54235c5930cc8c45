package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sessionkit"

// Refresh outcomes recorded by RefreshTotal.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
	// RefreshReused counts 401s answered with a token another request already obtained.
	RefreshReused = "reused"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Client metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RefreshTotal    *prometheus.CounterVec
	RetriesTotal    prometheus.Counter
	ExpiredTotal    prometheus.Counter

	// Mock server metrics
	ServerRequestsTotal *prometheus.CounterVec
	ServerTokensIssued  *prometheus.CounterVec
}

// NewRegistry creates a registry with every SessionKit metric and the Go runtime collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "HTTP requests sent, by method and status class.",
		}, []string{"method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "HTTP round-trip latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "token_refresh_total",
			Help:      "Access token refresh outcomes.",
		}, []string{"result"}),
		RetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_retries_total",
			Help:      "Requests resent after a token refresh.",
		}),
		ExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "session_expired_total",
			Help:      "Sessions torn down after a failed refresh.",
		}),
		ServerRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mockapi",
			Name:      "requests_total",
			Help:      "Requests served by the mock API, by route and status.",
		}, []string{"route", "status"}),
		ServerTokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mockapi",
			Name:      "tokens_issued_total",
			Help:      "Access tokens issued by the mock API, by grant.",
		}, []string{"grant"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RequestsTotal,
		r.RequestDuration,
		r.RefreshTotal,
		r.RetriesTotal,
		r.ExpiredTotal,
		r.ServerRequestsTotal,
		r.ServerTokensIssued,
	)
	return r
}

// Register adds an extra collector, such as a SessionCollector.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.reg.Register(c)
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveRequest records one completed client request. status is 0 for transport failures.
// A nil registry is a no-op, which lets components run without metrics.
func (r *Registry) ObserveRequest(method string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, StatusClass(status)).Inc()
	r.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveRefresh records a refresh outcome.
func (r *Registry) ObserveRefresh(result string) {
	if r == nil {
		return
	}
	r.RefreshTotal.WithLabelValues(result).Inc()
}

// ObserveRetry records a resent request.
func (r *Registry) ObserveRetry() {
	if r == nil {
		return
	}
	r.RetriesTotal.Inc()
}

// ObserveExpired records a forced logout.
func (r *Registry) ObserveExpired() {
	if r == nil {
		return
	}
	r.ExpiredTotal.Inc()
}

// ObserveServerRequest records a request served by the mock API.
func (r *Registry) ObserveServerRequest(route string, status int) {
	if r == nil {
		return
	}
	r.ServerRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveTokenIssued records an access token minted by the mock API.
func (r *Registry) ObserveTokenIssued(grant string) {
	if r == nil {
		return
	}
	r.ServerTokensIssued.WithLabelValues(grant).Inc()
}

// StatusClass maps a status code to "2xx".."5xx", or "error" for 0.
func StatusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
