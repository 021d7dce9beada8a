package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	llmCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "truthcheck_llm_calls_total",
			Help: "Total number of language-model calls by purpose",
		},
		[]string{"purpose"},
	)

	searchCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "truthcheck_search_calls_total",
			Help: "Total number of search-provider calls by framing and outcome",
		},
		[]string{"framing", "outcome"},
	)

	escalations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "truthcheck_escalations_total",
			Help: "Total number of escalation rounds by kind",
		},
		[]string{"kind"},
	)

	analyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "truthcheck_analyses_total",
			Help: "Total number of analyses by outcome",
		},
		[]string{"outcome"},
	)

	analysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "truthcheck_analysis_duration_seconds",
			Help:    "Duration of complete analyses",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	recalibrationRules = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "truthcheck_recalibration_rules_total",
			Help: "Total number of times each recalibration rule changed a score",
		},
		[]string{"rule"},
	)
)

// Search outcomes
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeQuota = "quota"
)

// RecordLLMCall counts one model call
func RecordLLMCall(purpose string) {
	llmCalls.WithLabelValues(purpose).Inc()
}

// RecordSearchCall counts one search request
func RecordSearchCall(framing, outcome string) {
	searchCalls.WithLabelValues(framing, outcome).Inc()
}

// RecordEscalation counts one escalation round
func RecordEscalation(kind string) {
	escalations.WithLabelValues(kind).Inc()
}

// RecordAnalysis records the outcome and duration of one analysis
func RecordAnalysis(outcome string, duration time.Duration) {
	analyses.WithLabelValues(outcome).Inc()
	analysisDuration.Observe(duration.Seconds())
}

// RecordRule counts one applied recalibration rule
func RecordRule(rule string) {
	recalibrationRules.WithLabelValues(rule).Inc()
}
