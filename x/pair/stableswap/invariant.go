// Package stableswap implements the two-coin Curve stableswap invariant on integers.
//
// Amplification values are Curve's A scaled by AmpPrecision, so Ann = amp * NCoins. All balances
// passed to the solvers share one precision, the greatest precision of the pair.
package stableswap

import (
	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
)

const (
	// NCoins is the number of assets in a pair.
	NCoins = 2
	// AmpPrecision scales amp so ramps interpolate in integers.
	AmpPrecision = 100
	// MaxIterations caps both Newton solvers.
	MaxIterations = 64
)

var (
	nCoins      = math.NewInt(NCoins)
	ampPrec     = math.NewInt(AmpPrecision)
	nCoinsPlus1 = math.NewInt(NCoins + 1)
)

// ComputeD solves the invariant D for balances x0 and x1 at amplification amp.
// D is zero for an empty pool; a pool with exactly one empty side has no invariant.
func ComputeD(amp uint64, x0, x1 math.Int) (d math.Int, err error) {
	defer fixedpoint.Recover(&err)

	sum := x0.Add(x1)
	if sum.IsZero() {
		return math.ZeroInt(), nil
	}
	if !x0.IsPositive() || !x1.IsPositive() {
		return math.Int{}, fixedpoint.ErrEmptyPool
	}

	ann := math.NewIntFromUint64(amp).Mul(nCoins)
	d = sum
	for i := 0; i < MaxIterations; i++ {
		dp := d.Mul(d).Quo(x0.Mul(nCoins)).Mul(d).Quo(x1.Mul(nCoins))
		prev := d
		num := ann.Mul(sum).Quo(ampPrec).Add(dp.Mul(nCoins)).Mul(d)
		den := ann.Sub(ampPrec).Mul(d).Quo(ampPrec).Add(nCoinsPlus1.Mul(dp))
		d = num.Quo(den)
		if fixedpoint.DiffInt(d, prev).LTE(math.OneInt()) {
			return d, nil
		}
	}
	return math.Int{}, fixedpoint.ErrConvergence.Wrap("stableswap D")
}

// CalcY returns the balance of the other asset that keeps the invariant at d once one side holds xj.
func CalcY(amp uint64, xj, d math.Int) (y math.Int, err error) {
	defer fixedpoint.Recover(&err)

	if !xj.IsPositive() {
		return math.Int{}, fixedpoint.ErrZeroAmount.Wrap("new balance is zero")
	}
	ann := math.NewIntFromUint64(amp).Mul(nCoins)

	c := d.Mul(d).Quo(xj.Mul(nCoins)).Mul(d).Mul(ampPrec).Quo(ann.Mul(nCoins))
	b := xj.Add(d.Mul(ampPrec).Quo(ann))

	y = d
	for i := 0; i < MaxIterations; i++ {
		prev := y
		den := y.MulRaw(2).Add(b).Sub(d)
		if !den.IsPositive() {
			return math.Int{}, fixedpoint.ErrDivisionByZero.Wrap("stableswap y")
		}
		y = y.Mul(y).Add(c).Quo(den)
		if fixedpoint.DiffInt(y, prev).LTE(math.OneInt()) {
			return y, nil
		}
	}
	return math.Int{}, fixedpoint.ErrConvergence.Wrap("stableswap y")
}
