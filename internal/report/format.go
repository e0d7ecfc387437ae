// Package report turns pinned HydraDX state into the snapshot report rows.
package report

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are not a whole number of minor units
var ErrInvalidAmount = errors.New("invalid amount")

// Amount scales a minor-unit integer down by 10^decimals. Trailing zeros are trimmed,
// so zero renders as "0" and the result never uses exponent notation.
func Amount(v *uint256.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v.ToBig(), -decimals).String()
}

// MinorUnits is the inverse of Amount
func MinorUnits(amount string, decimals int32) (*uint256.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q: %v", amount, err)
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() || scaled.IsNegative() {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q", amount)
	}
	v, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q", amount)
	}
	return v, nil
}
