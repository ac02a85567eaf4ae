package configs

import "time"

// Events sizes the worker pool that fans committed ledger events out to
// subscribers.
type Events struct {
	Workers int `env:"WORKERS" envDefault:"4"`
}

// Reconcile controls the periodic custody reconciliation job.
type Reconcile struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Interval time.Duration `env:"INTERVAL" envDefault:"1m"`
}
