package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config carries environment-level defaults. Flags override these, so
// the precedence is flag > environment > built-in default.
type Config struct {
	// Database is the run archive path.
	Database string `env:"TESSERA_DB" envDefault:"tessera.db"`

	// Seed is the default RNG seed when --seed is not given.
	Seed uint64 `env:"TESSERA_SEED" envDefault:"0"`

	// MaxOps bounds run-to-completion work as a safety stop for models
	// that never exhaust.
	MaxOps int `env:"TESSERA_MAX_OPS" envDefault:"10000000"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
