// Package metrics counts connector activity for a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics provides observability for remote calls and entry points.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	RemoteCalls    *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec

	Operations *prometheus.CounterVec

	ContactsCreated  prometheus.Counter
	MappingConflicts prometheus.Counter
}

// New registers all connector metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RemoteCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rutld_remote_calls_total",
			Help: "Remote API calls by function and result",
		}, []string{"func", "result"}),

		RemoteDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rutld_remote_call_duration_seconds",
			Help:    "Duration of remote API calls by function",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"func"}),

		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rutld_operations_total",
			Help: "Connector entry point invocations by operation and result",
		}, []string{"op", "result"}),

		ContactsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "rutld_remote_contacts_created_total",
			Help: "Remote contacts created by the connector",
		}),

		MappingConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "rutld_contact_mapping_conflicts_total",
			Help: "Contact mapping inserts lost to a concurrent writer",
		}),
	}
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// ObserveRemoteCall records one remote call.
func (m *Metrics) ObserveRemoteCall(fn string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.RemoteCalls.WithLabelValues(fn, result(err)).Inc()
	m.RemoteDuration.WithLabelValues(fn).Observe(d.Seconds())
}

// ObserveOperation records one entry point invocation.
func (m *Metrics) ObserveOperation(op string, err error) {
	if m != nil {
		m.Operations.WithLabelValues(op, result(err)).Inc()
	}
}

// IncContactsCreated records a new remote contact.
func (m *Metrics) IncContactsCreated() {
	if m != nil {
		m.ContactsCreated.Inc()
	}
}

// IncMappingConflicts records a lost mapping insert race.
func (m *Metrics) IncMappingConflicts() {
	if m != nil {
		m.MappingConflicts.Inc()
	}
}

// WriteTextfile dumps everything gathered by g in the text exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
