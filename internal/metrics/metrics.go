package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "practice_sessions_active",
		Help: "Currently active practice sessions",
	})

	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_sessions_total",
		Help: "Total practice sessions started",
	})

	TurnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_turns_total",
		Help: "Accepted user turns across all sessions",
	})

	TurnsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "practice_turns_rejected_total",
		Help: "Turn submissions rejected by the in-flight guard",
	})

	CompletionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "completion_requests_total",
		Help: "Completion endpoint requests by outcome",
	}, []string{"outcome"})

	CredentialRotations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "completion_credential_rotations_total",
		Help: "Credential pool advances triggered by quota or malformed replies",
	})

	AnalysisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_errors_total",
		Help: "Analysis failures by error type",
	}, []string{"type"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "turn_stage_duration_seconds",
		Help:    "Per-stage latency within one turn",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 3.0, 5.0, 8.0, 15.0},
	}, []string{"stage"})

	TurnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "turn_duration_seconds",
		Help:    "End-to-end latency from user submission to agent reply",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 3.0, 5.0, 8.0, 15.0, 30.0},
	})

	ParserFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reply_parser_fallbacks_total",
		Help: "Model replies that needed brace extraction after fence stripping failed",
	})
)
