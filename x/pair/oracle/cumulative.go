// Package oracle keeps the price history of a pair: directional cumulative prices for XYK and
// stable pairs, and a ring buffer of per-block observations for stable and PCL pairs.
package oracle

import (
	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
)

// TwapPrecision is the number of fractional digits carried by cumulative prices.
const TwapPrecision = 6

var twapScale = fixedpoint.Pow10(TwapPrecision)

// XYKDeltas returns the growth of both directional accumulators over dt seconds at the given
// reserves: (dt * 10^6) * r1 / r0 for asset 0 priced in asset 1, and the mirror for asset 1.
// Empty reserves do not move the accumulators.
func XYKDeltas(reserves [2]math.Int, dt uint64) ([2]math.Int, error) {
	zero := [2]math.Int{math.ZeroInt(), math.ZeroInt()}
	if dt == 0 || !reserves[0].IsPositive() || !reserves[1].IsPositive() {
		return zero, nil
	}
	scaled := math.NewIntFromUint64(dt).Mul(twapScale)
	d0, err := fixedpoint.MultiplyRatio(scaled, reserves[1], reserves[0])
	if err != nil {
		return zero, err
	}
	d1, err := fixedpoint.MultiplyRatio(scaled, reserves[0], reserves[1])
	if err != nil {
		return zero, err
	}
	return [2]math.Int{d0, d1}, nil
}

// RateDelta converts the return of one whole unit of the offer asset, in raw units of an asset
// with askPrecision decimals, into accumulator growth over dt seconds.
func RateDelta(unitReturn math.Int, askPrecision uint8, dt uint64) (math.Int, error) {
	if dt == 0 || !unitReturn.IsPositive() {
		return math.ZeroInt(), nil
	}
	scaled := math.NewIntFromUint64(dt).Mul(twapScale)
	return fixedpoint.MultiplyRatio(unitReturn, scaled, fixedpoint.Pow10(askPrecision))
}

// Accumulate adds delta to acc modulo 2^128.
func Accumulate(acc, delta math.Int) math.Int {
	return fixedpoint.WrappingAdd128(acc, delta)
}

// Average returns the TWAP between two readings of an accumulator taken dt seconds apart, in
// units of 10^-TwapPrecision.
func Average(later, earlier math.Int, dt uint64) (math.Int, error) {
	if dt == 0 {
		return math.Int{}, fixedpoint.ErrDivisionByZero.Wrap("empty time window")
	}
	return fixedpoint.WrappingSub128(later, earlier).Quo(math.NewIntFromUint64(dt)), nil
}
