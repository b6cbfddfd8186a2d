package fixedpoint

import (
	"math/big"

	"cosmossdk.io/math"
	"github.com/holiman/uint256"
)

var decScale = big.NewInt(1_000_000_000_000_000_000)

// Sqrt returns the square root of a non-negative decimal, truncated to 18 digits.
func Sqrt(d math.LegacyDec) (math.LegacyDec, error) {
	if d.IsNegative() {
		return math.LegacyDec{}, ErrNegative.Wrapf("sqrt of %s", d)
	}
	raw := new(big.Int).Mul(d.BigInt(), decScale)
	return math.LegacyNewDecFromBigIntWithPrec(raw.Sqrt(raw), math.LegacyPrecision), nil
}

// ISqrt returns floor(sqrt(v)) for a value that fits 256 bits.
func ISqrt(v math.Int) (math.Int, error) {
	if v.IsNegative() {
		return math.Int{}, ErrNegative.Wrapf("sqrt of %s", v)
	}
	u, overflow := uint256.FromBig(v.BigInt())
	if overflow {
		return math.Int{}, ErrOverflow.Wrapf("sqrt of %s", v)
	}
	return math.NewIntFromBigInt(u.Sqrt(u).ToBig()), nil
}

// SqrtProduct returns floor(sqrt(a*b)) computed on 256-bit integers.
func SqrtProduct(a, b math.Int) (math.Int, error) {
	x, ovA := uint256.FromBig(a.BigInt())
	y, ovB := uint256.FromBig(b.BigInt())
	if ovA || ovB || a.IsNegative() || b.IsNegative() {
		return math.Int{}, ErrOverflow.Wrapf("sqrt(%s * %s)", a, b)
	}
	prod, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return math.Int{}, ErrOverflow.Wrapf("%s * %s exceeds 256 bits", a, b)
	}
	return math.NewIntFromBigInt(prod.Sqrt(prod).ToBig()), nil
}
