// Package metrics defines and registers all custom Prometheus metrics for the
// study API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation; the HTTP layer exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "study"

// ── Experiment metrics ───────────────────────────────────────────────────────

// ExperimentsCreatedTotal counts experiments created by teachers.
var ExperimentsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "experiments_created_total",
		Help:      "Total number of experiments created.",
	},
)

// ── Content generation metrics ───────────────────────────────────────────────

// ContentGenerationsTotal counts generate-content runs.
// Label:
//   - result: "success", "no_target_words", "story_failed", "conflict", "store_failed"
var ContentGenerationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_generations_total",
		Help:      "Total number of content generation runs, by outcome.",
	},
	[]string{"result"},
)

// ContentGenerationDuration measures each pipeline step.
// Label:
//   - step: "story", "audio", "total"
var ContentGenerationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "content_generation_duration_seconds",
		Help:      "Duration of content generation steps.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 40},
	},
	[]string{"step"},
)

// AudioDegradedTotal counts runs where narration was absent and the audio
// reference was left empty.
var AudioDegradedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audio_degraded_total",
		Help:      "Total number of generation runs that produced no narration.",
	},
)

// ── Participant metrics ──────────────────────────────────────────────────────

// SessionsStartedTotal counts participant sessions.
// Label:
//   - condition: "treatment" or "control"
var SessionsStartedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_started_total",
		Help:      "Total number of participant sessions started, by condition.",
	},
	[]string{"condition"},
)

// StageTransitionsTotal counts stage advances.
// Label:
//   - stage: the stage entered (e.g. "gapFill")
var StageTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stage_transitions_total",
		Help:      "Total number of participant stage transitions, by stage entered.",
	},
	[]string{"stage"},
)
