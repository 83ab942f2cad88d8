// Package metrics exposes authentication counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	ResultSuccess            = "success"
	ResultValidation         = "validation_error"
	ResultConflict           = "conflict"
	ResultNotFound           = "not_found"
	ResultInvalidCredentials = "invalid_credentials"
	ResultError              = "error"
)

// AuthRecorder records authentication and authorization outcomes
type AuthRecorder interface {
	RecordSignUp(result string)
	RecordSignIn(result string)
	RecordGuardRejection(reason string)
	RecordForbidden(resource string)
}

// Collector is the Prometheus-backed AuthRecorder
type Collector struct {
	signUps         *prometheus.CounterVec
	signIns         *prometheus.CounterVec
	guardRejections *prometheus.CounterVec
	forbidden       *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signUps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_auth_signups_total",
			Help: "Sign-up attempts by result",
		}, []string{"result"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_auth_signins_total",
			Help: "Sign-in attempts by result",
		}, []string{"result"}),
		guardRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_auth_guard_rejections_total",
			Help: "Requests rejected by the authorization guard by reason",
		}, []string{"reason"}),
		forbidden: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_auth_forbidden_total",
			Help: "Mutations rejected by the ownership check by resource kind",
		}, []string{"resource"}),
	}

	reg.MustRegister(c.signUps, c.signIns, c.guardRejections, c.forbidden)
	return c
}

func (c *Collector) RecordSignUp(result string) { c.signUps.WithLabelValues(result).Inc() }

func (c *Collector) RecordSignIn(result string) { c.signIns.WithLabelValues(result).Inc() }

func (c *Collector) RecordGuardRejection(reason string) {
	c.guardRejections.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordForbidden(resource string) { c.forbidden.WithLabelValues(resource).Inc() }

// Nop discards everything
type Nop struct{}

func (Nop) RecordSignUp(string)         {}
func (Nop) RecordSignIn(string)         {}
func (Nop) RecordGuardRejection(string) {}
func (Nop) RecordForbidden(string)      {}

// Handler serves the Prometheus scrape endpoint
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
