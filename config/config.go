// Package config loads a declarative YAML rule set and builds a live
// streamguard.Engine from it. It lives outside the root streamguard
// package because it must import streamguard/rules to construct concrete
// rule instances, and rules already imports streamguard — keeping the
// loader in root would create an import cycle.
package config

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/streamguardhq/streamguard"
	"github.com/streamguardhq/streamguard/rules"
)

// =============================================================================
// Embedded Default Rule Set
// =============================================================================

//go:embed default_rules.yaml
var defaultRuleSetYAML []byte

// MaxYAMLFileSize bounds how large a rule-set document LoadRuleSetConfig
// will accept; larger input is rejected before it is parsed. Callers that
// read from a file (including the fsnotify-triggered reload) read the
// whole file first, so this does not limit the read itself.
const MaxYAMLFileSize = 1 << 20 // 1 MiB

var validate = validator.New()

// =============================================================================
// Rule Set Configuration Types
// =============================================================================

// RuleSetConfig is the top-level declarative configuration for a
// streamguard.Engine: its composition options plus the rules to register,
// in the order they should be evaluated.
//
// Description:
//
//	Parsed from YAML via LoadRuleSetConfig, then turned into a live
//	*streamguard.Engine via BuildEngine. The zero value of every optional
//	field reproduces streamguard's own defaults (no threshold, no decay,
//	first-wins rewrite composition).
//
// Thread Safety: immutable after loading; safe for concurrent use.
type RuleSetConfig struct {
	// Name labels the engine for metrics and logging.
	Name string `yaml:"name"`

	// ScoreThreshold, if positive, configures streamguard.WithScoreThreshold.
	ScoreThreshold int `yaml:"score_threshold" validate:"gte=0"`

	// Decay, if non-zero, configures streamguard.WithDecay. Must be in [0,1].
	Decay float64 `yaml:"decay" validate:"gte=0,lte=1"`

	// RewriteChain selects rewrite-chain composition when true; the
	// default (false) is first-wins.
	RewriteChain bool `yaml:"rewrite_chain"`

	// Sequences lists forbidden-sequence rules to register, in order.
	Sequences []SequenceRuleConfig `yaml:"sequences" validate:"dive"`

	// Patterns lists pattern rules to register, in order.
	Patterns []PatternRuleConfig `yaml:"patterns" validate:"dive"`
}

// SequenceRuleConfig declares one ForbiddenSequenceRule.
//
// Description:
//
//	Tokens must appear, in order, across the chunk stream. Mode selects
//	gap tolerance; StopWords, Score, and Replacement are optional and
//	mirror rules.SequenceConfig one-for-one.
type SequenceRuleConfig struct {
	// Name, if set, overrides the rule's default metrics/logging name.
	Name string `yaml:"name"`

	// Tokens are the ordered tokens to detect. Must be non-empty.
	Tokens []string `yaml:"tokens" validate:"required,min=1,dive,required"`

	// Strict requires tokens to appear back-to-back; the default is
	// gaps-allowed.
	Strict bool `yaml:"strict"`

	// StopWords reset progress to zero when seen in the carry buffer.
	StopWords []string `yaml:"stop_words"`

	// Score is attributed to LastScore on a match. Zero disables scoring.
	Score int `yaml:"score" validate:"gte=0"`

	// Replacement, if set, turns a match into a Substitute instead of a
	// Suppress.
	Replacement string `yaml:"replacement"`

	// Reason is the Suppress payload on a match when Replacement is empty.
	Reason string `yaml:"reason"`
}

// PatternRuleConfig declares one PatternRule.
//
// Description:
//
//	Preset selects a well-known structural detector ("email",
//	"email_strict", "url", "ipv4", "credit_card") or "custom" for a
//	literal substring pattern given in Pattern.
type PatternRuleConfig struct {
	// Name, if set, overrides the rule's default metrics/logging name.
	Name string `yaml:"name"`

	// Preset selects the structural detector. Required.
	Preset string `yaml:"preset" validate:"required,oneof=email email_strict url ipv4 credit_card custom"`

	// Pattern is the literal substring to match. Required when Preset is
	// "custom", ignored otherwise.
	Pattern string `yaml:"pattern"`

	// Description documents a custom pattern for introspection.
	Description string `yaml:"description"`

	// CaseInsensitive folds case when Preset is "custom".
	CaseInsensitive bool `yaml:"case_insensitive"`

	// Replacement, if set, turns a match into a Substitute instead of a
	// Suppress.
	Replacement string `yaml:"replacement"`

	// Reason is the Suppress payload on a match when Replacement is empty.
	Reason string `yaml:"reason"`
}

// =============================================================================
// Singleton Default Rule Set
// =============================================================================

var (
	defaultConfigMu    sync.RWMutex
	defaultConfigOnce  sync.Once
	cachedDefaultRules *RuleSetConfig
	defaultConfigErr   error
)

// GetDefaultRuleSetConfig returns the embedded default rule set, cached
// after the first call.
//
// Description:
//
//	Loads default_rules.yaml on first call and caches the result for
//	subsequent calls. Uses sync.Once for thread-safe initialization.
//
// Thread Safety: safe for concurrent use via sync.Once.
func GetDefaultRuleSetConfig(ctx context.Context) (*RuleSetConfig, error) {
	defaultConfigMu.RLock()
	if cachedDefaultRules != nil || defaultConfigErr != nil {
		cfg, err := cachedDefaultRules, defaultConfigErr
		defaultConfigMu.RUnlock()
		return cfg, err
	}
	defaultConfigMu.RUnlock()

	defaultConfigMu.Lock()
	defer defaultConfigMu.Unlock()

	if cachedDefaultRules != nil || defaultConfigErr != nil {
		return cachedDefaultRules, defaultConfigErr
	}

	defaultConfigOnce.Do(func() {
		cachedDefaultRules, defaultConfigErr = LoadRuleSetConfig(ctx, defaultRuleSetYAML)
	})

	return cachedDefaultRules, defaultConfigErr
}

// ResetDefaultRuleSetConfig clears the cached default config for testing.
//
// Thread Safety: safe for concurrent use.
func ResetDefaultRuleSetConfig() {
	defaultConfigMu.Lock()
	defer defaultConfigMu.Unlock()
	cachedDefaultRules = nil
	defaultConfigErr = nil
	defaultConfigOnce = sync.Once{}
}

// =============================================================================
// Loading and Validation
// =============================================================================

// LoadRuleSetConfig parses and validates a RuleSetConfig from YAML bytes.
//
// Description:
//
//	Parses the YAML, applies the "default" engine name when unset, and
//	runs struct validation (tokens, presets, ranges) plus cross-field
//	checks (a reason or replacement on every rule, a pattern for every
//	"custom" preset).
//
// Inputs:
//
//	ctx - Context, currently unused beyond call-signature symmetry with
//	      the rest of the config loaders in this codebase.
//	data - Raw YAML bytes to parse.
//
// Outputs:
//
//	*RuleSetConfig - The validated configuration.
//	error - Non-nil if parsing or validation fails.
func LoadRuleSetConfig(ctx context.Context, data []byte) (*RuleSetConfig, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("LoadRuleSetConfig: empty YAML data")
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("LoadRuleSetConfig: YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var cfg RuleSetConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("LoadRuleSetConfig: parsing YAML: %w", err)
	}

	if cfg.Name == "" {
		cfg.Name = "default"
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("LoadRuleSetConfig: validation: %w", err)
	}
	if err := validateRuleSetConfig(&cfg); err != nil {
		return nil, fmt.Errorf("LoadRuleSetConfig: validation: %w", err)
	}

	slog.Info("rule set config loaded",
		slog.String("name", cfg.Name),
		slog.Int("sequences", len(cfg.Sequences)),
		slog.Int("patterns", len(cfg.Patterns)),
		slog.Int("score_threshold", cfg.ScoreThreshold),
	)

	return &cfg, nil
}

func validateRuleSetConfig(cfg *RuleSetConfig) error {
	for i, sc := range cfg.Sequences {
		if sc.Replacement == "" && sc.Reason == "" {
			return fmt.Errorf("sequence[%d]: reason must not be empty when replacement is unset", i)
		}
	}
	for i, pc := range cfg.Patterns {
		if pc.Preset == "custom" && pc.Pattern == "" {
			return fmt.Errorf("pattern[%d]: pattern must not be empty for preset \"custom\"", i)
		}
		if pc.Replacement == "" && pc.Reason == "" {
			return fmt.Errorf("pattern[%d]: reason must not be empty when replacement is unset", i)
		}
	}
	return nil
}

// =============================================================================
// Engine Construction
// =============================================================================

// BuildEngine turns a validated RuleSetConfig into a live
// streamguard.Engine with every declared rule registered, in declaration
// order (sequences before patterns).
func BuildEngine(cfg *RuleSetConfig) (*streamguard.Engine, error) {
	opts := []streamguard.Option{streamguard.WithName(cfg.Name)}
	if cfg.ScoreThreshold > 0 {
		opts = append(opts, streamguard.WithScoreThreshold(cfg.ScoreThreshold))
	}
	if cfg.Decay > 0 {
		opts = append(opts, streamguard.WithDecay(cfg.Decay))
	}
	if cfg.RewriteChain {
		opts = append(opts, streamguard.WithRewriteChain())
	}

	engine, err := streamguard.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("BuildEngine: %w", err)
	}

	for i, sc := range cfg.Sequences {
		rule, err := buildSequenceRule(sc)
		if err != nil {
			return nil, fmt.Errorf("BuildEngine: sequence[%d]: %w", i, err)
		}
		engine.Register(rule)
	}

	for i, pc := range cfg.Patterns {
		rule, err := buildPatternRule(pc)
		if err != nil {
			return nil, fmt.Errorf("BuildEngine: pattern[%d]: %w", i, err)
		}
		engine.Register(rule)
	}

	return engine, nil
}

func buildSequenceRule(sc SequenceRuleConfig) (*rules.ForbiddenSequenceRule, error) {
	mode := rules.GapsAllowed
	if sc.Strict {
		mode = rules.Strict
	}
	rule, err := rules.NewForbiddenSequenceRule(sc.Tokens, rules.SequenceConfig{
		Mode:        mode,
		StopWords:   sc.StopWords,
		Score:       sc.Score,
		Replacement: sc.Replacement,
		Reason:      sc.Reason,
	})
	if err != nil {
		return nil, err
	}
	if sc.Name != "" {
		rule = rule.WithName(sc.Name)
	}
	return rule, nil
}

func buildPatternRule(pc PatternRuleConfig) (*rules.PatternRule, error) {
	var rule *rules.PatternRule

	if pc.Preset == "custom" {
		if pc.Replacement != "" {
			return nil, fmt.Errorf("custom patterns do not support rewriting, only presets do")
		}
		var err error
		rule, err = rules.NewCustomPatternRule(pc.Pattern, pc.Reason, pc.Description, pc.CaseInsensitive)
		if err != nil {
			return nil, err
		}
	} else {
		preset, err := presetFromName(pc.Preset)
		if err != nil {
			return nil, err
		}
		if pc.Replacement != "" {
			rule = rules.NewPatternRewriteRule(preset, pc.Replacement)
		} else {
			rule = rules.NewPatternRule(preset, pc.Reason)
		}
	}

	if pc.Name != "" {
		rule = rule.WithName(pc.Name)
	}
	return rule, nil
}

func presetFromName(name string) (rules.PatternPreset, error) {
	switch name {
	case "email":
		return rules.PatternEmail, nil
	case "email_strict":
		return rules.PatternEmailStrict, nil
	case "url":
		return rules.PatternURL, nil
	case "ipv4":
		return rules.PatternIPv4, nil
	case "credit_card":
		return rules.PatternCreditCard, nil
	default:
		return 0, fmt.Errorf("unknown preset %q", name)
	}
}
