package configs

import "time"

// Auth configures how callers prove which wallet they act for. Mode is
// "signature" (EIP-191 signed requests) or "header" (trust X-Wallet-Address,
// local development only).
type Auth struct {
	Mode    string        `env:"MODE" envDefault:"signature"`
	MaxSkew time.Duration `env:"MAX_SKEW" envDefault:"5m"`

	// ReplayCacheSize is how many signed requests are remembered to refuse
	// replays within MaxSkew.
	ReplayCacheSize int `env:"REPLAY_CACHE_SIZE" envDefault:"65536"`
}
