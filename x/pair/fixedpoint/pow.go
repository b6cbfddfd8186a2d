package fixedpoint

import (
	"cosmossdk.io/math"
)

// MaxPowIterations bounds the binomial series in HalfFloatPow.
const MaxPowIterations = 1000

var half = math.LegacyNewDecWithPrec(5, 1)

// HalfFloatPow returns 0.5^a for a in [0, 1).
//
// 0.5^a = (1 - 1/2)^a expands to 1 + sum C(a,k)(-1/2)^k where every term after the first is
// negative for a in (0, 1). Terms shrink by at least half each step, so the loop ends once a term
// truncates to zero.
func HalfFloatPow(a math.LegacyDec) (math.LegacyDec, error) {
	one := math.LegacyOneDec()
	if a.IsNegative() || a.GTE(one) {
		return math.LegacyDec{}, ErrOverflow.Wrapf("half_float_pow argument %s out of [0, 1)", a)
	}
	if a.IsZero() {
		return one, nil
	}

	result := one
	term := one
	for k := int64(1); k < MaxPowIterations; k++ {
		// |k - 1 - a|, with k - 1 >= a once k >= 2
		c := math.LegacyNewDec(k - 1).Sub(a).Abs()
		term = term.MulTruncate(c.MulTruncate(half)).QuoInt64(k)
		if term.IsZero() {
			return result, nil
		}
		result = result.Sub(term)
	}
	return math.LegacyDec{}, ErrConvergence.Wrap("half_float_pow")
}

// HalfPow returns 0.5^x for any non-negative x by splitting off the integer part.
func HalfPow(x math.LegacyDec) (math.LegacyDec, error) {
	if x.IsNegative() {
		return math.LegacyDec{}, ErrNegative.Wrap(x.String())
	}
	whole := x.TruncateInt()
	if !whole.IsInt64() || whole.Int64() >= 64 {
		return math.LegacyZeroDec(), nil
	}
	n := whole.Int64()
	result := math.LegacyOneDec().QuoInt(math.NewIntFromUint64(1 << uint(n)))
	frac := x.Sub(math.LegacyNewDec(n))
	if frac.IsZero() {
		return result, nil
	}
	p, err := HalfFloatPow(frac)
	if err != nil {
		return math.LegacyDec{}, err
	}
	return result.MulTruncate(p), nil
}
