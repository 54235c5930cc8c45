package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
)

// SessionCollector reports the current session state at scrape time.
type SessionCollector struct {
	snapshot func() domain.Session

	authenticated *prometheus.Desc
	tokenPresent  *prometheus.Desc
}

// NewSessionCollector creates a collector that calls snapshot on every scrape.
func NewSessionCollector(snapshot func() domain.Session) *SessionCollector {
	return &SessionCollector{
		snapshot: snapshot,
		authenticated: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "authenticated"),
			"1 when a principal is loaded.", nil, nil),
		tokenPresent: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "session", "token_present"),
			"1 when an access token is stored.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.authenticated
	ch <- c.tokenPresent
}

// Collect implements prometheus.Collector.
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.snapshot()
	ch <- prometheus.MustNewConstMetric(c.authenticated, prometheus.GaugeValue, boolValue(s.Authenticated()))
	ch <- prometheus.MustNewConstMetric(c.tokenPresent, prometheus.GaugeValue, boolValue(s.HasToken))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
