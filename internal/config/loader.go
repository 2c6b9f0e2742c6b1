package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if BEHAVIO_CONFIG is set
//  3. env (prefix BEHAVIO_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("BEHAVIO_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Map env keys like BEHAVIO_NIGHT_START -> night_start, keeping
	// underscores to match the koanf tags on the struct.
	envProvider := env.Provider("BEHAVIO_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "behavio_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.GroupBy != "week" && c.GroupBy != "none" {
		return fmt.Errorf("%w: groupby must be \"week\" or \"none\", got %q", ErrInvalidConfig, c.GroupBy)
	}
	if c.ParetoPercentage <= 0 || c.ParetoPercentage > 1 {
		return fmt.Errorf("%w: pareto_percentage must be in (0,1], got %v", ErrInvalidConfig, c.ParetoPercentage)
	}
	if _, err := c.UserOptions(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
