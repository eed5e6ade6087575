package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SELLERPULSE_CONFIG is set
//  3. env (prefix SELLERPULSE_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SELLERPULSE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment keys like SELLERPULSE_QUEUE_SIZE map onto the flat
	// koanf tags (queue_size); underscores are preserved.
	envProvider := env.Provider("SELLERPULSE_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "sellerpulse_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.StageNegotiation == "":
		return fmt.Errorf("%w: stage_negotiation must not be empty", ErrInvalidConfig)
	case cfg.StageWonMarker == "" || cfg.StageLostMarker == "":
		return fmt.Errorf("%w: won/lost stage markers must not be empty", ErrInvalidConfig)
	case len(cfg.PipelineStages) == 0:
		return fmt.Errorf("%w: pipeline_stages must not be empty", ErrInvalidConfig)
	}
	return nil
}
