package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	PocketsCreated    prometheus.Counter
	PocketsDeleted    prometheus.Counter
	OpenSessions      prometheus.Gauge
	CredentialsIssued *prometheus.CounterVec
	ProofsGenerated   *prometheus.CounterVec
	ProofsVerified    *prometheus.CounterVec
	EndpointLatency   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on reg.
// A nil reg registers on the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		PocketsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "mysafepocket_pockets_created_total",
			Help: "Total number of identities created",
		}),
		PocketsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "mysafepocket_pockets_deleted_total",
			Help: "Total number of pockets cleared by logout",
		}),
		OpenSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mysafepocket_open_sessions",
			Help: "Current number of loaded pocket sessions",
		}),
		CredentialsIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mysafepocket_credentials_issued_total",
			Help: "Total number of credentials issued, labeled by credential type",
		}, []string{"type"}),
		ProofsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mysafepocket_proofs_generated_total",
			Help: "Total number of selective-disclosure proofs generated, labeled by credential type",
		}, []string{"type"}),
		ProofsVerified: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mysafepocket_proofs_verified_total",
			Help: "Total number of proof verification attempts, labeled by outcome status",
		}, []string{"status"}),
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mysafepocket_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "status"}),
	}
}

func (m *Metrics) IncrementPocketsCreated() {
	m.PocketsCreated.Inc()
}

func (m *Metrics) IncrementPocketsDeleted() {
	m.PocketsDeleted.Inc()
}

func (m *Metrics) IncrementOpenSessions() {
	m.OpenSessions.Inc()
}

func (m *Metrics) DecrementOpenSessions() {
	m.OpenSessions.Dec()
}

// IncrementCredentialsIssued increments the issued counter for a credential type
func (m *Metrics) IncrementCredentialsIssued(credentialType string) {
	m.CredentialsIssued.WithLabelValues(credentialType).Inc()
}

func (m *Metrics) IncrementProofsGenerated(credentialType string) {
	m.ProofsGenerated.WithLabelValues(credentialType).Inc()
}

// IncrementProofsVerified records a verification outcome (verified, failed, error)
func (m *Metrics) IncrementProofsVerified(status string) {
	m.ProofsVerified.WithLabelValues(status).Inc()
}

// ObserveRequest records the latency for a given endpoint and response status
func (m *Metrics) ObserveRequest(endpoint string, status int, d time.Duration) {
	m.EndpointLatency.WithLabelValues(endpoint, strconv.Itoa(status)).Observe(d.Seconds())
}
