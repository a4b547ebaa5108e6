// Package metrics holds the Prometheus collectors for the site's routes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Contact outcome label values.
const (
	ContactAccepted    = "accepted"
	ContactInvalid     = "invalid"
	ContactTooLarge    = "too_large"
	ContactRateLimited = "rate_limited"
	ContactBotRejected = "bot_rejected"
	ContactError       = "error"
)

// Metrics is the set of collectors registered on one registry.
type Metrics struct {
	reg *prometheus.Registry

	ContactSubmissions *prometheus.CounterVec
	Notifications      *prometheus.CounterVec
	Redirects          *prometheus.CounterVec
	Downloads          prometheus.Counter
	BadgeRenders       *prometheus.CounterVec
}

// New creates and registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		ContactSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "contact_submissions_total",
			Help:      "Contact form attempts by outcome.",
		}, []string{"outcome"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "contact_notifications_total",
			Help:      "Notification emails by delivery result.",
		}, []string{"delivered"}),
		Redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "shortlink_redirects_total",
			Help:      "Shortlink lookups by result.",
		}, []string{"result"}),
		Downloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "resume_downloads_total",
			Help:      "Résumé downloads served.",
		}),
		BadgeRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "badge_renders_total",
			Help:      "Badge renders by state.",
		}, []string{"state"}),
	}
	reg.MustRegister(
		m.ContactSubmissions,
		m.Notifications,
		m.Redirects,
		m.Downloads,
		m.BadgeRenders,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
