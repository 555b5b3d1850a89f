package host

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// AmountPrecision is the number of decimal places of one base unit.
const AmountPrecision = 8

// ParseAmount converts a decimal string like "1.5" to base units.
func ParseAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if d.Sign() < 0 {
		return 0, fmt.Errorf("negative amount %s", s)
	}
	units := d.Shift(AmountPrecision)
	if !units.Equal(units.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", s, AmountPrecision)
	}
	b := units.BigInt()
	if !b.IsUint64() {
		return 0, fmt.Errorf("amount %s out of range", s)
	}
	return b.Uint64(), nil
}

func FormatAmount(units uint64) string {
	b := new(big.Int).SetUint64(units)
	return decimal.NewFromBigInt(b, -AmountPrecision).String()
}
