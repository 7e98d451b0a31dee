package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_pipeline_runs_total",
			Help: "Report pipeline runs by outcome, terminal stage and error kind",
		},
		[]string{"outcome", "stage", "kind"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_pipeline_stage_duration_seconds",
			Help:    "Duration of each report pipeline stage in seconds",
			Buckets: []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)

	GeocodeResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_resolutions_total",
			Help: "Geocoding resolutions by source (cache, provider, fallback)",
		},
		[]string{"source"},
	)

	NarrativeTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narrative_tokens_total",
			Help: "Tokens consumed by narrative generation",
		},
		[]string{"direction"},
	)
)

// ObserveStage records how long a pipeline stage took.
func ObserveStage(stage string, elapsed time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveRun records the terminal state of a pipeline run.
func ObserveRun(outcome, stage, kind string) {
	PipelineRuns.WithLabelValues(outcome, stage, kind).Inc()
}

// ObserveTokens records narrative token usage.
func ObserveTokens(usage TokenUsage) {
	if usage.IsZero() {
		return
	}
	NarrativeTokens.WithLabelValues("prompt").Add(float64(usage.PromptTokens))
	NarrativeTokens.WithLabelValues("completion").Add(float64(usage.CompletionTokens))
}
