package config

import (
	"github.com/caarlos0/env/v11"

	"campaign-escrow/internal/config/configs"
)

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library.
// The nested structs are tagged with envPrefix so their fields are parsed
// with the given prefix. See the individual types in the configs package for
// default values and options. Use Load to construct a Config.
type Config struct {
	// Env specifies the deployment environment (e.g. prod, dev). It is
	// attached to every log line.
	Env string `env:"ENV" envDefault:"prod"`

	HTTP      configs.HTTP      `envPrefix:"HTTP_"`
	Log       configs.Logger    `envPrefix:"LOG_"`
	Psql      configs.Postgres  `envPrefix:"PSQL_"`
	Store     configs.Store     `envPrefix:"STORE_"`
	Ledger    configs.Ledger    `envPrefix:"LEDGER_"`
	Auth      configs.Auth      `envPrefix:"AUTH_"`
	Events    configs.Events    `envPrefix:"EVENTS_"`
	Reconcile configs.Reconcile `envPrefix:"RECONCILE_"`
}

// Load reads configuration from environment variables into a Config and
// validates the ledger section.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Ledger.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
