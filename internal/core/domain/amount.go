package domain

import (
	"math"

	"github.com/ethereum/go-ethereum/common"
)

// Amounts are token base units (e.g. 10^-6 USDC) held in int64.

// DepositFor returns reward * maxCreators, the custody a campaign must pull
// up front.
func DepositFor(reward, maxCreators int64) (int64, error) {
	if reward <= 0 {
		return 0, ErrInvalidAmount
	}
	if maxCreators <= 0 {
		return 0, ErrInvalidCapacity
	}
	if reward > math.MaxInt64/maxCreators {
		return 0, ErrAmountOverflow
	}
	return reward * maxCreators, nil
}

// PayoutAmount returns floor(reward * percent / 100) without intermediate
// overflow.
func PayoutAmount(reward int64, percent uint8) (int64, error) {
	if percent == 0 || percent > 100 {
		return 0, ErrInvalidPayoutPercent
	}
	if reward <= 0 {
		return 0, ErrInvalidAmount
	}
	p := int64(percent)
	return (reward/100)*p + (reward%100)*p/100, nil
}

// Debit checks that have covers need and returns the remainder.
func Debit(kind *Error, account common.Address, have, need int64) (int64, error) {
	if need <= 0 {
		return 0, ErrInvalidAmount
	}
	if have < need {
		return 0, &InsufficientFundsError{Kind: kind, Account: account, Have: have, Need: need}
	}
	return have - need, nil
}

// Credit adds amount to have, refusing to wrap around.
func Credit(have, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if have > math.MaxInt64-amount {
		return 0, ErrAmountOverflow
	}
	return have + amount, nil
}

// ParseAddress validates a hex account address. The zero address is rejected.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, ErrInvalidAddress
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, ErrInvalidAddress
	}
	return addr, nil
}
