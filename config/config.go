// Package config loads the service configuration from a JSON or YAML
// file with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/harborworks/slipway/infra/notify"
)

type Config struct {
	Store    StoreConfig   `json:"store"`
	Planner  PlannerConfig `json:"planner"`
	Metrics  MetricsConfig `json:"metrics"`
	Notifier notify.Config `json:"notifier"`
	Logging  LoggingConfig `json:"logging"`
}

// Load reads the configuration at path. Environment variables prefixed
// with SLIPWAY_ override file values, with "__" standing in for dots
// (SLIPWAY_STORE__PATH overrides store.path).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("SLIPWAY_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "slipway_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Store.SetDefaults()
	cfg.Planner.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Notifier.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Planner.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
