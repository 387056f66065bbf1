package main

import (
	"context"
	"fmt"
	"os"

	"github.com/streamguardhq/streamguard"
	sgconfig "github.com/streamguardhq/streamguard/config"
)

// loadEngine builds an Engine from --config, falling back to the
// embedded baseline rule set when no path was given.
func loadEngine(ctx context.Context) (*streamguard.Engine, error) {
	if configPath == "" {
		cfg, err := sgconfig.GetDefaultRuleSetConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading embedded rule set: %w", err)
		}
		return sgconfig.BuildEngine(cfg)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", configPath, err)
	}
	cfg, err := sgconfig.LoadRuleSetConfig(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configPath, err)
	}
	return sgconfig.BuildEngine(cfg)
}
