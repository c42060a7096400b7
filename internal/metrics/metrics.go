package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the verification surface.
type Metrics struct {
	// Trust verification metrics
	VerificationsTotal *prometheus.CounterVec
	TrustScore         prometheus.Histogram
	Confidence         prometheus.Histogram
	InsufficientSignal prometheus.Counter

	// Collaborator metrics
	CollaboratorRequests *prometheus.CounterVec
	CollaboratorLatency  *prometheus.HistogramVec

	// Provenance metrics
	ProvenanceRequests *prometheus.CounterVec

	// Pilot metrics
	PilotIngests *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		VerificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustverifier_verifications_total",
				Help: "Total trust verifications processed",
			},
			[]string{"outcome"}, // outcome: verified, unverified, insufficient_signal, error
		),

		TrustScore: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trustverifier_trust_score",
				Help:    "Distribution of computed composite trust scores",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),

		Confidence: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trustverifier_confidence",
				Help:    "Distribution of verification confidence values",
				Buckets: []float64{0.2, 0.4, 0.6, 0.8, 0.85, 0.9, 0.95, 1.0},
			},
		),

		InsufficientSignal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "trustverifier_insufficient_signal_total",
				Help: "Verifications rejected because no component score was obtainable",
			},
		),

		CollaboratorRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustverifier_collaborator_requests_total",
				Help: "Requests to external trust collaborators",
			},
			[]string{"source", "result"}, // result: ok, error, timeout, circuit_open
		),

		CollaboratorLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trustverifier_collaborator_latency_seconds",
				Help:    "Latency of external collaborator calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),

		ProvenanceRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustverifier_provenance_requests_total",
				Help: "Provenance verification pass-through requests",
			},
			[]string{"result"}, // result: ok, upstream_error, bad_request
		),

		PilotIngests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustverifier_pilot_ingests_total",
				Help: "Pilot snapshot ingests per cohort agent",
			},
			[]string{"agent_id"}, // cohort is fixed and small
		),
	}
}

// RecordVerification records a completed trust verification.
func (m *Metrics) RecordVerification(outcome string, score, confidence float64) {
	m.VerificationsTotal.WithLabelValues(outcome).Inc()
	m.TrustScore.Observe(score)
	m.Confidence.Observe(confidence)
}

// RecordInsufficientSignal records a verification with zero usable components.
func (m *Metrics) RecordInsufficientSignal() {
	m.VerificationsTotal.WithLabelValues("insufficient_signal").Inc()
	m.InsufficientSignal.Inc()
}

// RecordCollaboratorCall records one fan-out branch result.
func (m *Metrics) RecordCollaboratorCall(source, result string, seconds float64) {
	m.CollaboratorRequests.WithLabelValues(source, result).Inc()
	m.CollaboratorLatency.WithLabelValues(source).Observe(seconds)
}

// RecordProvenance records a provenance pass-through outcome.
func (m *Metrics) RecordProvenance(result string) {
	m.ProvenanceRequests.WithLabelValues(result).Inc()
}

// RecordPilotIngest records a pilot snapshot ingest.
func (m *Metrics) RecordPilotIngest(agentID string) {
	m.PilotIngests.WithLabelValues(agentID).Inc()
}
