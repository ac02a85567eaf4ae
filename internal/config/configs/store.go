package configs

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Store selects the persistence backend. Seed lists development balances
// as address:amount pairs in token base units, e.g.
// STORE_SEED=0xabc...:1000000,0xdef...:500.
type Store struct {
	Driver string           `env:"DRIVER" envDefault:"memory"`
	Seed   map[string]int64 `env:"SEED" envSeparator:"," envKeyValSeparator:":"`
}

// NormalizedDriver returns the lower-cased driver name.
func (c Store) NormalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(c.Driver))
}

// SeedBalances parses Seed into account balances.
func (c Store) SeedBalances() (map[common.Address]int64, error) {
	out := make(map[common.Address]int64, len(c.Seed))
	for k, v := range c.Seed {
		if !common.IsHexAddress(k) {
			return nil, fmt.Errorf("seed: invalid address %q", k)
		}
		if v < 0 {
			return nil, fmt.Errorf("seed: negative amount for %s", k)
		}
		out[common.HexToAddress(k)] = v
	}
	return out, nil
}
