package streamguard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus metrics for engine feed outcomes
// =============================================================================

var (
	// feedTotal counts Feed calls by engine name and resulting decision kind.
	// Labels: engine, kind (permit, suppress, substitute)
	feedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "streamguard",
		Subsystem: "engine",
		Name:      "feed_total",
		Help:      "Total Feed calls by engine and resulting decision kind",
	}, []string{"engine", "kind"})

	// ruleScoreTotal accumulates score contributed by each rule by name.
	// Labels: engine, rule
	ruleScoreTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "streamguard",
		Subsystem: "engine",
		Name:      "rule_score_total",
		Help:      "Cumulative score contributed per rule",
	}, []string{"engine", "rule"})

	// cumulativeScore tracks the engine's current cumulative score.
	// Labels: engine
	cumulativeScore = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "streamguard",
		Subsystem: "engine",
		Name:      "cumulative_score",
		Help:      "Current cumulative score for the engine",
	}, []string{"engine"})

	// thresholdTripsTotal counts threshold-triggered suppressions.
	// Labels: engine
	thresholdTripsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "streamguard",
		Subsystem: "engine",
		Name:      "threshold_trips_total",
		Help:      "Total synthetic threshold suppressions",
	}, []string{"engine"})
)

// recordFeed records one Feed call's outcome and score contributions.
func recordFeed(engine string, kind DecisionKind, breakdown []ScoreEntry, score int) {
	feedTotal.WithLabelValues(engine, kind.String()).Inc()
	for _, entry := range breakdown {
		ruleScoreTotal.WithLabelValues(engine, entry.Name).Add(float64(entry.Score))
	}
	cumulativeScore.WithLabelValues(engine).Set(float64(score))
}

// recordThresholdTrip records a synthetic threshold suppression.
func recordThresholdTrip(engine string) {
	thresholdTripsTotal.WithLabelValues(engine).Inc()
}
