package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for deed validation.
type Metrics struct {
	// Validation outcomes by status and failure kind
	Outcomes *prometheus.CounterVec

	// Pipeline latency by run source
	ValidateLatency *prometheus.HistogramVec

	// Extractor call latency by result
	ExtractLatency *prometheus.HistogramVec

	// Extraction attempts by model and result
	ExtractAttempts *prometheus.CounterVec

	// Accepted county match scores
	CountyMatchScore prometheus.Histogram

	// Audit writes that failed
	AuditFailures prometheus.Counter
}

// New creates a Metrics instance registered with reg. A nil reg uses the
// default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deedcheck_validation_outcomes_total",
			Help: "Total validation outcomes by status and failure kind",
		}, []string{"status", "kind"}), // kind is "" for valid records

		ValidateLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deedcheck_validate_duration_seconds",
			Help:    "Duration of the validation pipeline by run source",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"source"}),

		ExtractLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deedcheck_extract_duration_seconds",
			Help:    "Duration of LLM extraction calls by result",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"result"}),

		ExtractAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deedcheck_extract_attempts_total",
			Help: "Total LLM extraction attempts by model and result",
		}, []string{"model", "result"}),

		CountyMatchScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "deedcheck_county_match_score",
			Help:    "Similarity score of accepted county matches",
			Buckets: []float64{70, 75, 80, 85, 90, 95, 99, 100},
		}),

		AuditFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "deedcheck_audit_failures_total",
			Help: "Validation runs that could not be written to the audit log",
		}),
	}
}

// IncrementOutcome records a validation outcome.
func (m *Metrics) IncrementOutcome(status, kind string) {
	if m != nil {
		m.Outcomes.WithLabelValues(status, kind).Inc()
	}
}

// ObserveValidateLatency records the pipeline duration.
func (m *Metrics) ObserveValidateLatency(source string, d time.Duration) {
	if m != nil {
		m.ValidateLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// ObserveExtraction records one extractor call. model is "" when every
// provider failed.
func (m *Metrics) ObserveExtraction(model, result string, d time.Duration) {
	if m != nil {
		m.ExtractLatency.WithLabelValues(result).Observe(d.Seconds())
		m.ExtractAttempts.WithLabelValues(model, result).Inc()
	}
}

// ObserveCountyMatch records an accepted county match score.
func (m *Metrics) ObserveCountyMatch(score float64) {
	if m != nil {
		m.CountyMatchScore.Observe(score)
	}
}

// IncrementAuditFailure records a failed audit write.
func (m *Metrics) IncrementAuditFailure() {
	if m != nil {
		m.AuditFailures.Inc()
	}
}
