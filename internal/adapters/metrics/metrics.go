// Package metrics records registration counters in a Prometheus registry
// and exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/example/watools/internal/ports/secondary"
)

const namespace = "watools"

// Registry implements secondary.RegistrationMetrics.
type Registry struct {
	reg      *prometheus.Registry
	attempts *prometheus.CounterVec
	contacts *prometheus.CounterVec
	pending  *prometheus.GaugeVec
}

// New creates a registry with the registration collectors registered.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registration",
			Name:      "attempts_total",
			Help:      "Registration submission attempts by outcome.",
		}, []string{"outcome"}),
		contacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registration",
			Name:      "contacts_total",
			Help:      "Contacts processed by membership status and final result.",
		}, []string{"status", "result"}),
		pending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registration",
			Name:      "pending_contacts",
			Help:      "Eligible contacts not yet registered, by membership status.",
		}, []string{"status"}),
	}
	r.reg.MustRegister(r.attempts, r.contacts, r.pending)
	return r
}

// ObserveAttempt counts one submission attempt.
func (r *Registry) ObserveAttempt(outcome string) {
	r.attempts.WithLabelValues(outcome).Inc()
}

// ObserveContact counts one contact's final result.
func (r *Registry) ObserveContact(status string, succeeded bool) {
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	r.contacts.WithLabelValues(status, result).Inc()
}

// SetPending records the pending count for a status.
func (r *Registry) SetPending(status string, count int) {
	r.pending.WithLabelValues(status).Set(float64(count))
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile writes all metrics to path atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

var _ secondary.RegistrationMetrics = (*Registry)(nil)
