package configs

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// Ledger configures the escrow authorities and the token it holds. Owner
// and Verifier only seed a fresh database; once stored, rotations made
// through the admin API win.
type Ledger struct {
	Owner    common.Address `env:"OWNER"`
	Verifier common.Address `env:"VERIFIER"`
	// Custody is the token account escrowed funds are held in.
	Custody common.Address `env:"CUSTODY"`
	// TokenDecimals is used to render and parse decimal amounts. The default
	// matches USDC.
	TokenDecimals int32  `env:"TOKEN_DECIMALS" envDefault:"6"`
	TokenSymbol   string `env:"TOKEN_SYMBOL" envDefault:"USDC"`
}

// Validate rejects a ledger without authorities or custody.
func (c Ledger) Validate() error {
	var zero common.Address
	switch {
	case c.Owner == zero:
		return errors.New("LEDGER_OWNER is required")
	case c.Verifier == zero:
		return errors.New("LEDGER_VERIFIER is required")
	case c.Custody == zero:
		return errors.New("LEDGER_CUSTODY is required")
	case c.TokenDecimals < 0 || c.TokenDecimals > 18:
		return errors.New("LEDGER_TOKEN_DECIMALS must be within 0..18")
	}
	return nil
}
