// Package rules implements the streamguard matcher set: the
// forbidden-sequence DFA, the bounded-buffer pattern matcher, and the
// glossary of named presets built on top of both.
package rules

import (
	"strings"

	"github.com/streamguardhq/streamguard"
)

// SequenceMode selects how strictly a ForbiddenSequenceRule requires its
// tokens to appear.
type SequenceMode int

const (
	// GapsAllowed permits other content between consecutive tokens.
	GapsAllowed SequenceMode = iota

	// Strict requires tokens to appear back-to-back (only ASCII
	// whitespace may separate them).
	Strict
)

// SequenceConfig configures a ForbiddenSequenceRule.
type SequenceConfig struct {
	// Mode selects gap tolerance. Zero value is GapsAllowed.
	Mode SequenceMode

	// StopWords, if any, reset progress to zero whenever one occurs as
	// a substring of the carry buffer.
	StopWords []string

	// Score is the value attributed to LastScore on a match. Zero
	// disables scoring for this rule.
	Score int

	// Replacement, if non-empty, turns a match into a Substitute
	// decision instead of Suppress.
	Replacement string

	// Reason is the Suppress payload on a match when Replacement is empty.
	Reason string
}

// ForbiddenSequenceRule detects an ordered appearance of N tokens across
// chunk boundaries, tolerant of gaps (configurable), with optional
// stop-word resets and optional scoring/rewriting.
//
// Thread Safety: not safe for concurrent use. One rule instance belongs
// to exactly one Engine.
type ForbiddenSequenceRule struct {
	tokens    []string
	progress  int
	buffer    string
	mode      SequenceMode
	stopWords []string
	score     int
	replace   string
	reason    string
	lastScore int
	name      string
}

// NewForbiddenSequenceRule constructs a rule from an explicit config. It
// is the most general constructor; see presets.go for the common shapes
// exposed to callers.
func NewForbiddenSequenceRule(tokens []string, cfg SequenceConfig) (*ForbiddenSequenceRule, error) {
	if len(tokens) == 0 {
		return nil, streamguard.ErrEmptyTokenList
	}
	cp := make([]string, len(tokens))
	for i, t := range tokens {
		if t == "" {
			return nil, streamguard.ErrEmptyToken
		}
		cp[i] = t
	}
	stopWords := make([]string, len(cfg.StopWords))
	copy(stopWords, cfg.StopWords)

	return &ForbiddenSequenceRule{
		tokens:    cp,
		mode:      cfg.Mode,
		stopWords: stopWords,
		score:     cfg.Score,
		replace:   cfg.Replacement,
		reason:    cfg.Reason,
		name:      "forbidden_sequence",
	}, nil
}

// Feed implements streamguard.Rule.
func (r *ForbiddenSequenceRule) Feed(chunk string) streamguard.Decision {
	if chunk == "" {
		r.lastScore = 0
		return streamguard.Permit()
	}

	originalBuffer := r.buffer

	if r.checkMatch(chunk) {
		r.lastScore = r.score
		r.progress = 0
		r.buffer = ""

		if r.replace != "" {
			complete := originalBuffer + chunk
			rewritten := complete
			for _, tok := range r.tokens {
				rewritten = strings.ReplaceAll(rewritten, tok, r.replace)
			}
			return streamguard.Substitute(rewritten)
		}
		return streamguard.Suppress(r.reason)
	}

	r.lastScore = 0
	return streamguard.Permit()
}

// checkMatch appends chunk to the carry buffer and advances progress,
// returning true once the full token sequence has been observed in order.
func (r *ForbiddenSequenceRule) checkMatch(chunk string) bool {
	r.buffer += chunk

	if r.checkStopWords() {
		return false
	}

	if r.mode == Strict && r.progress > 0 {
		return r.checkStrict()
	}

	for r.progress < len(r.tokens) {
		target := r.tokens[r.progress]
		idx := strings.Index(r.buffer, target)
		if idx < 0 {
			break
		}
		r.progress++
		r.buffer = r.buffer[idx+len(target):]
	}

	if r.progress >= len(r.tokens) {
		return true
	}

	maxLen := r.maxTokenLen()
	if len(r.buffer) > maxLen*2 {
		keep := len(r.buffer) - maxLen
		r.buffer = r.buffer[keep:]
	}
	return false
}

// checkStrict implements the strict (no-gaps) continuation once progress
// is already positive: the next token must follow immediately, modulo
// leading ASCII whitespace.
func (r *ForbiddenSequenceRule) checkStrict() bool {
	target := r.tokens[r.progress]
	trimmed := strings.TrimLeft(r.buffer, " \t\r\n")

	if strings.HasPrefix(trimmed, target) {
		r.progress++
		r.buffer = trimmed[len(target):]
		if r.progress >= len(r.tokens) {
			return true
		}
		return false
	}

	if trimmed != "" {
		r.progress = 0
		r.buffer = ""
	}
	return false
}

// checkStopWords resets progress and clears the buffer if any configured
// stop word occurs as a substring of the current carry buffer.
func (r *ForbiddenSequenceRule) checkStopWords() bool {
	for _, sw := range r.stopWords {
		if strings.Contains(r.buffer, sw) {
			r.progress = 0
			r.buffer = ""
			return true
		}
	}
	return false
}

func (r *ForbiddenSequenceRule) maxTokenLen() int {
	max := 0
	for _, t := range r.tokens {
		if len(t) > max {
			max = len(t)
		}
	}
	if max == 0 {
		max = 100
	}
	return max
}

// Reset implements streamguard.Rule.
func (r *ForbiddenSequenceRule) Reset() {
	r.progress = 0
	r.buffer = ""
	r.lastScore = 0
}

// Name implements streamguard.Rule.
func (r *ForbiddenSequenceRule) Name() string { return r.name }

// LastScore implements streamguard.Rule.
func (r *ForbiddenSequenceRule) LastScore() int { return r.lastScore }

// WithName overrides the rule's metrics/logging name. Returns the rule
// for chaining at construction time.
func (r *ForbiddenSequenceRule) WithName(name string) *ForbiddenSequenceRule {
	r.name = name
	return r
}
