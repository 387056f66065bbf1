package streamguard

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// ScoreEntry is one (rule name, score) pair in a per-chunk breakdown.
type ScoreEntry struct {
	Name  string
	Score int
}

// Option configures an Engine at construction time. Options compose
// freely (spec.md §4.4): a threshold, a decay coefficient, and
// rewrite-chain mode may all be set on the same Engine.
type Option func(*Engine) error

// WithScoreThreshold configures a positive cumulative-score threshold.
// Once the cumulative score reaches threshold, the engine latches
// stopped and returns a synthetic suppression.
func WithScoreThreshold(threshold int) Option {
	return func(e *Engine) error {
		if threshold <= 0 {
			return ErrInvalidThreshold
		}
		e.hasThreshold = true
		e.threshold = threshold
		return nil
	}
}

// WithDecay configures a decay coefficient in [0, 1]. After any chunk
// that adds zero score, the cumulative score is multiplied by (1-decay)
// and truncated toward zero.
func WithDecay(decay float64) Option {
	return func(e *Engine) error {
		if decay < 0 || decay > 1 {
			return ErrInvalidDecay
		}
		e.decay = decay
		return nil
	}
}

// WithRewriteChain puts the engine in rewrite-chain composition mode:
// successive Substitute verdicts compose, each rule's input becoming the
// prior rule's rewritten output. The default is first-wins.
func WithRewriteChain() Option {
	return func(e *Engine) error {
		e.chainMode = true
		return nil
	}
}

// WithLogger attaches a structured logger. Purely ambient — never
// affects a returned Decision.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger != nil {
			e.logger = logger
		}
		return nil
	}
}

// WithTracer attaches an OpenTelemetry tracer. Purely ambient — never
// affects a returned Decision.
func WithTracer(tracer oteltrace.Tracer) Option {
	return func(e *Engine) error {
		e.tracer = tracer
		return nil
	}
}

// WithName sets the engine's metrics/logging label. Defaults to "default".
func WithName(name string) Option {
	return func(e *Engine) error {
		if name != "" {
			e.name = name
		}
		return nil
	}
}

// Engine orchestrates registered rules over a stream of chunks,
// aggregating scores and composing rewrites per spec.md §4.4.
//
// Thread Safety: NOT safe for concurrent use — one Engine belongs to one
// stream processed by one goroutine at a time. Distinct Engine instances
// are fully independent and may run concurrently on separate goroutines.
type Engine struct {
	rules []Rule

	stopped bool

	hasThreshold bool
	threshold    int

	decay float64

	chainMode bool

	cumulativeScore int
	breakdown       []ScoreEntry

	name   string
	logger *slog.Logger
	tracer oteltrace.Tracer
}

// New constructs an Engine. With no options it has no threshold, no
// decay, and first-wins rewrite composition.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		name:   "default",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Register adds a rule to the engine. Rules are evaluated in
// registration order and become exclusively owned by this engine.
func (e *Engine) Register(r Rule) {
	e.rules = append(e.rules, r)
}

// RuleCount returns the number of registered rules.
func (e *Engine) RuleCount() int { return len(e.rules) }

// IsStopped reports whether the engine's one-shot latch has tripped.
func (e *Engine) IsStopped() bool { return e.stopped }

// Score returns the current cumulative score.
func (e *Engine) Score() int { return e.cumulativeScore }

// Breakdown returns the (rule name, score) pairs attributed to the most
// recent chunk the rules were evaluated on, in registration order. A chunk
// fed to a stopped engine leaves it unchanged.
func (e *Engine) Breakdown() []ScoreEntry {
	out := make([]ScoreEntry, len(e.breakdown))
	copy(out, e.breakdown)
	return out
}

// Reset clears the stopped latch, the cumulative score, the breakdown,
// and every registered rule's internal state.
func (e *Engine) Reset() {
	e.stopped = false
	e.cumulativeScore = 0
	e.breakdown = nil
	for _, r := range e.rules {
		r.Reset()
	}
}

// Feed processes one chunk through every registered rule in order and
// returns the engine's aggregated verdict, per the 10-step algorithm of
// spec.md §4.4. Equivalent to FeedContext(context.Background(), chunk).
func (e *Engine) Feed(chunk string) Decision {
	return e.FeedContext(context.Background(), chunk)
}

// FeedContext is Feed with an explicit context, used only to propagate
// OpenTelemetry span parentage; it never affects the returned Decision.
func (e *Engine) FeedContext(ctx context.Context, chunk string) Decision {
	return traceFeed(ctx, e.tracer, e.name, func(ctx context.Context) Decision {
		return e.feed(ctx, chunk)
	})
}

func (e *Engine) feed(ctx context.Context, chunk string) Decision {
	requestID := uuid.New().String()

	// Step 1: stopped latch short-circuits everything.
	if e.stopped {
		recordFeed(e.name, DecisionSuppress, nil, e.cumulativeScore)
		return Suppress("stream already blocked")
	}

	// Step 2: empty chunk always permits, untouched state.
	if chunk == "" {
		recordFeed(e.name, DecisionPermit, nil, e.cumulativeScore)
		return Permit()
	}

	// Step 3: per-chunk init.
	chunkScore := 0
	working := chunk
	var first *Decision
	hadRewrite := false
	e.breakdown = nil

	scoringConfigured := e.hasThreshold || e.decay > 0

	// Step 4: evaluate rules in registration order.
	for _, rule := range e.rules {
		decision := rule.Feed(working)
		score := rule.LastScore()
		if score > 0 {
			chunkScore += score
			e.breakdown = append(e.breakdown, ScoreEntry{Name: rule.Name(), Score: score})
		}

		switch decision.Kind {
		case DecisionPermit:
			continue
		case DecisionSuppress:
			if !scoringConfigured && first == nil {
				first = &decision
			}
		case DecisionSubstitute:
			if e.chainMode {
				working = decision.Replacement()
				hadRewrite = true
			} else if first == nil {
				first = &decision
			}
		}
	}

	// Step 5: fold per-chunk score into cumulative.
	e.cumulativeScore += chunkScore

	// Step 6: decay only applies on a zero-score chunk.
	if chunkScore == 0 && e.decay > 0 && e.cumulativeScore > 0 {
		e.cumulativeScore = int(math.Trunc(float64(e.cumulativeScore) * (1 - e.decay)))
	}

	e.logger.DebugContext(ctx, "engine feed",
		slog.String("request_id", requestID),
		slog.String("engine", e.name),
		slog.Int("chunk_score", chunkScore),
		slog.Int("cumulative_score", e.cumulativeScore),
	)

	// Step 7: threshold check, possibly overriding everything above.
	if e.hasThreshold && e.cumulativeScore >= e.threshold {
		e.stopped = true
		reason := fmt.Sprintf("score threshold exceeded: %d >= %d", e.cumulativeScore, e.threshold)
		recordThresholdTrip(e.name)
		decision := Suppress(reason)
		recordFeed(e.name, decision.Kind, e.breakdown, e.cumulativeScore)
		return decision
	}

	// Step 8: any recorded first-non-permit verdict latches the stream,
	// whether it is a Suppress or a first-wins Substitute (spec.md §4.4
	// step 8 does not distinguish kind here).
	if first != nil {
		e.stopped = true
		recordFeed(e.name, first.Kind, e.breakdown, e.cumulativeScore)
		return *first
	}

	// Step 9: chained rewrite, if any rule produced one.
	if hadRewrite {
		decision := Substitute(working)
		recordFeed(e.name, decision.Kind, e.breakdown, e.cumulativeScore)
		return decision
	}

	// Step 10: nothing fired.
	recordFeed(e.name, DecisionPermit, e.breakdown, e.cumulativeScore)
	return Permit()
}
