package httpadapter

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	errAmountFormat    = errors.New("amount must be a decimal string")
	errAmountPrecision = errors.New("amount has more fractional digits than the token")
	errAmountRange     = errors.New("amount out of range")
)

var maxBaseUnits = decimal.NewFromInt(math.MaxInt64)

// amountCodec converts between decimal token strings ("12.5") and int64
// base units using the token's decimals.
type amountCodec struct {
	decimals int32
}

func (c amountCodec) Format(units int64) string {
	return decimal.New(units, -c.decimals).StringFixed(c.decimals)
}

// Parse accepts non-negative amounts only. Zero is returned as is; the
// ledger decides whether zero is meaningful.
func (c amountCodec) Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errAmountFormat
	}
	if d.IsNegative() {
		return 0, errAmountRange
	}
	units := d.Shift(c.decimals)
	if !units.Equal(units.Truncate(0)) {
		return 0, errAmountPrecision
	}
	if units.GreaterThan(maxBaseUnits) {
		return 0, errAmountRange
	}
	return units.IntPart(), nil
}
