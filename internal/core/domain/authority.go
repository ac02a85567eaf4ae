package domain

import "github.com/ethereum/go-ethereum/common"

// Authorities holds the ledger-wide administrative addresses.
type Authorities struct {
	Owner    common.Address
	Verifier common.Address
}

// RequireOwner fails unless caller is the owner.
func (a Authorities) RequireOwner(caller common.Address) error {
	if a.Owner == (common.Address{}) || caller != a.Owner {
		return ErrUnauthorized
	}
	return nil
}

// Agent returns the verifier capability handed to the release engine.
func (a Authorities) Agent() VerifierAgent { return VerifierAgent(a.Verifier) }
