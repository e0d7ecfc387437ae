// =============================
// File: internal/omnipool/math.go
// =============================
package omnipool

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	ErrZeroReserve       = errors.New("asset reserve is zero")
	ErrZeroShares        = errors.New("asset shares are zero")
	ErrZeroDenominator   = errors.New("price denominator is zero")
	ErrMathOverflow      = errors.New("omnipool math overflow")
	ErrInsufficientShare = errors.New("shares to remove exceed position shares")
	ErrInvalidNumber     = errors.New("invalid decimal number")
)

// FixedOne is 1.0 in the 18-decimal fixed point used for prices and fees.
var FixedOne = uint256.NewInt(1_000_000_000_000_000_000)

// LiquidityOutParams are the inputs of CalculateLiquidityOut. Amounts are in minor units;
// PositionPrice and WithdrawalFee are 18-decimal fixed point.
type LiquidityOutParams struct {
	AssetReserve    *uint256.Int
	AssetHubReserve *uint256.Int
	AssetShares     *uint256.Int
	PositionAmount  *uint256.Int
	PositionShares  *uint256.Int
	PositionPrice   *uint256.Int
	SharesToRemove  *uint256.Int
	WithdrawalFee   *uint256.Int
}

// CalculateLiquidityOut returns the amount of the pool asset paid out when
// SharesToRemove shares of a position are withdrawn.
//
// The pool price is hub_reserve / reserve. When it is below the price the position was
// opened at, part of the removed shares goes to the protocol:
//
//	delta_b = (p_position - p_pool) / (p_pool + p_position) * shares_removed
//
// and the payout is reserve * (shares_removed - delta_b) / total_shares, reduced by the
// withdrawal fee. Every division rounds down.
func CalculateLiquidityOut(p LiquidityOutParams) (*uint256.Int, error) {
	if err := checkU128(p.AssetReserve, p.AssetHubReserve, p.AssetShares, p.PositionAmount,
		p.PositionShares, p.PositionPrice, p.SharesToRemove, p.WithdrawalFee); err != nil {
		return nil, err
	}
	if p.AssetReserve.IsZero() {
		return nil, ErrZeroReserve
	}
	if p.AssetShares.IsZero() {
		return nil, ErrZeroShares
	}
	if p.SharesToRemove.Gt(p.PositionShares) {
		return nil, errors.Wrapf(ErrInsufficientShare, "remove %s of %s", p.SharesToRemove.Dec(), p.PositionShares.Dec())
	}

	poolPrice, err := fixedFromRational(p.AssetHubReserve, p.AssetReserve)
	if err != nil {
		return nil, err
	}

	deltaB := new(uint256.Int)
	if poolPrice.Lt(p.PositionPrice) {
		sub := new(uint256.Int).Sub(p.PositionPrice, poolPrice)
		sum := new(uint256.Int).Add(poolPrice, p.PositionPrice)
		ratio, err := fixedFromRational(sub, sum)
		if err != nil {
			return nil, err
		}
		deltaB, err = mulDiv(ratio, p.SharesToRemove, FixedOne)
		if err != nil {
			return nil, err
		}
	}

	deltaShares := new(uint256.Int).Sub(p.SharesToRemove, deltaB)

	deltaReserve, err := mulDiv(p.AssetReserve, deltaShares, p.AssetShares)
	if err != nil {
		return nil, err
	}

	feeComplement := new(uint256.Int)
	if p.WithdrawalFee.Lt(FixedOne) {
		feeComplement.Sub(FixedOne, p.WithdrawalFee)
	}
	deltaReserve, err = mulDiv(feeComplement, deltaReserve, FixedOne)
	if err != nil {
		return nil, err
	}

	if err := checkU128(deltaReserve); err != nil {
		return nil, err
	}
	return deltaReserve, nil
}

// PriceToFixed converts a num/den price pair into 18-decimal fixed point, rounding half up.
func PriceToFixed(num, den *uint256.Int) (*uint256.Int, error) {
	if den.IsZero() {
		return nil, ErrZeroDenominator
	}
	scaled, overflow := new(uint256.Int).MulOverflow(num, FixedOne)
	if overflow {
		return nil, ErrMathOverflow
	}
	quo, rem := new(uint256.Int), new(uint256.Int)
	quo.DivMod(scaled, den, rem)

	twice, overflow := new(uint256.Int).MulOverflow(rem, uint256.NewInt(2))
	if overflow || !twice.Lt(den) {
		quo.AddUint64(quo, 1)
	}
	return quo, nil
}

// CalculateLiquidityOutString is CalculateLiquidityOut over decimal strings, in the order
// reserve, hub reserve, shares, position amount, position shares, position price,
// shares to remove, withdrawal fee.
func CalculateLiquidityOutString(reserve, hubReserve, shares, amount, positionShares, price, sharesToRemove, fee string) (string, error) {
	values := make([]*uint256.Int, 8)
	for i, s := range []string{reserve, hubReserve, shares, amount, positionShares, price, sharesToRemove, fee} {
		v, err := uint256.FromDecimal(s)
		if err != nil {
			return "", errors.Wrapf(ErrInvalidNumber, "%q: %v", s, err)
		}
		values[i] = v
	}

	out, err := CalculateLiquidityOut(LiquidityOutParams{
		AssetReserve:    values[0],
		AssetHubReserve: values[1],
		AssetShares:     values[2],
		PositionAmount:  values[3],
		PositionShares:  values[4],
		PositionPrice:   values[5],
		SharesToRemove:  values[6],
		WithdrawalFee:   values[7],
	})
	if err != nil {
		return "", err
	}
	return out.Dec(), nil
}

// fixedFromRational returns floor(n * 10^18 / d) as an 18-decimal fixed point value.
func fixedFromRational(n, d *uint256.Int) (*uint256.Int, error) {
	v, err := mulDiv(n, FixedOne, d)
	if err != nil {
		return nil, err
	}
	if err := checkU128(v); err != nil {
		return nil, err
	}
	return v, nil
}

// mulDiv returns floor(x * y / d)
func mulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, errors.Wrap(ErrMathOverflow, "division by zero")
	}
	product, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrMathOverflow
	}
	return product.Div(product, d), nil
}

func checkU128(values ...*uint256.Int) error {
	for _, v := range values {
		if v == nil {
			return errors.Wrap(ErrInvalidNumber, "missing value")
		}
		if v.BitLen() > 128 {
			return errors.Wrapf(ErrMathOverflow, "%s does not fit in u128", v.Dec())
		}
	}
	return nil
}
