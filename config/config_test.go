package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRuleSetConfig_Embedded(t *testing.T) {
	ctx := context.Background()
	cfg, err := LoadRuleSetConfig(ctx, defaultRuleSetYAML)
	require.NoError(t, err)

	require.Equal(t, "default", cfg.Name)
	require.Len(t, cfg.Sequences, 1)
	require.Len(t, cfg.Patterns, 2)
}

func TestLoadRuleSetConfig_EmptyData(t *testing.T) {
	_, err := LoadRuleSetConfig(context.Background(), nil)
	require.Error(t, err)
}

func TestLoadRuleSetConfig_OversizedData(t *testing.T) {
	data := make([]byte, MaxYAMLFileSize+1)
	_, err := LoadRuleSetConfig(context.Background(), data)
	require.Error(t, err)
}

func TestLoadRuleSetConfig_NameDefaulted(t *testing.T) {
	yaml := []byte(`
sequences: []
patterns: []
`)
	cfg, err := LoadRuleSetConfig(context.Background(), yaml)
	require.NoError(t, err)
	require.Equal(t, "default", cfg.Name)
}

func TestLoadRuleSetConfig_RejectsBadDecay(t *testing.T) {
	yaml := []byte(`
name: bad
decay: 1.5
`)
	_, err := LoadRuleSetConfig(context.Background(), yaml)
	require.Error(t, err)
}

func TestLoadRuleSetConfig_RejectsUnknownPreset(t *testing.T) {
	yaml := []byte(`
name: bad
patterns:
  - preset: not_a_real_preset
    reason: "x"
`)
	_, err := LoadRuleSetConfig(context.Background(), yaml)
	require.Error(t, err)
}

func TestLoadRuleSetConfig_RejectsCustomWithoutPattern(t *testing.T) {
	yaml := []byte(`
name: bad
patterns:
  - preset: custom
    reason: "x"
`)
	_, err := LoadRuleSetConfig(context.Background(), yaml)
	require.Error(t, err)
}

func TestLoadRuleSetConfig_RejectsMissingReasonAndReplacement(t *testing.T) {
	yaml := []byte(`
name: bad
sequences:
  - tokens: ["a", "b"]
`)
	_, err := LoadRuleSetConfig(context.Background(), yaml)
	require.Error(t, err)
}

func TestLoadRuleSetConfig_RejectsEmptyTokenInSequence(t *testing.T) {
	yaml := []byte(`
name: bad
sequences:
  - tokens: ["a", ""]
    reason: "x"
`)
	_, err := LoadRuleSetConfig(context.Background(), yaml)
	require.Error(t, err)
}

func TestBuildEngine_FromEmbeddedDefault(t *testing.T) {
	cfg, err := LoadRuleSetConfig(context.Background(), defaultRuleSetYAML)
	require.NoError(t, err)

	engine, err := BuildEngine(cfg)
	require.NoError(t, err)
	require.Equal(t, 3, engine.RuleCount())

	decision := engine.Feed("contact me at a@b.co please")
	require.True(t, decision.IsSuppress())
}

func TestBuildEngine_RewriteRule(t *testing.T) {
	yaml := []byte(`
name: rewriting
patterns:
  - preset: email
    replacement: "[redacted]"
`)
	cfg, err := LoadRuleSetConfig(context.Background(), yaml)
	require.NoError(t, err)

	engine, err := BuildEngine(cfg)
	require.NoError(t, err)

	decision := engine.Feed("reach me at a@b.co today")
	require.True(t, decision.IsSubstitute())
	require.Contains(t, decision.Replacement(), "[redacted]")
}

func TestBuildEngine_SequenceRule(t *testing.T) {
	yaml := []byte(`
name: sequence-demo
sequences:
  - tokens: ["delete", "all", "records"]
    reason: "destructive sequence"
`)
	cfg, err := LoadRuleSetConfig(context.Background(), yaml)
	require.NoError(t, err)

	engine, err := BuildEngine(cfg)
	require.NoError(t, err)

	require.True(t, engine.Feed("please delete ").IsPermit())
	require.True(t, engine.Feed("all the ").IsPermit())
	decision := engine.Feed("records now")
	require.True(t, decision.IsSuppress())
	require.Equal(t, "destructive sequence", decision.Reason())
}

func TestBuildEngine_RejectsCustomRewrite(t *testing.T) {
	yaml := []byte(`
name: bad
patterns:
  - preset: custom
    pattern: "secret"
    replacement: "[x]"
`)
	cfg, err := LoadRuleSetConfig(context.Background(), yaml)
	require.NoError(t, err)

	_, err = BuildEngine(cfg)
	require.Error(t, err)
}

func TestGetDefaultRuleSetConfig_CachesAcrossCalls(t *testing.T) {
	ResetDefaultRuleSetConfig()
	defer ResetDefaultRuleSetConfig()

	first, err := GetDefaultRuleSetConfig(context.Background())
	require.NoError(t, err)
	second, err := GetDefaultRuleSetConfig(context.Background())
	require.NoError(t, err)
	require.Same(t, first, second)
}
