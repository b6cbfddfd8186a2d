package fixedpoint

import (
	"math/big"

	"cosmossdk.io/math"
)

// MaxPrecision is the largest number of decimals a token may declare.
const MaxPrecision = math.LegacyPrecision

var pow10 [MaxPrecision*2 + 1]math.Int

func init() {
	p := math.OneInt()
	for i := range pow10 {
		pow10[i] = p
		p = p.MulRaw(10)
	}
}

// Pow10 returns 10^p for p in [0, 36].
func Pow10(p uint8) math.Int {
	return pow10[p]
}

// ValidatePrecision checks that p fits the decimal width.
func ValidatePrecision(p uint8) error {
	if int(p) > MaxPrecision {
		return ErrInvalidPrecision.Wrapf("precision %d exceeds %d", p, MaxPrecision)
	}
	return nil
}

// WithPrecision interprets an integer amount with p decimals as a decimal.
func WithPrecision(v math.Int, p uint8) (math.LegacyDec, error) {
	if err := ValidatePrecision(p); err != nil {
		return math.LegacyDec{}, err
	}
	if v.IsNegative() {
		return math.LegacyDec{}, ErrNegative.Wrap(v.String())
	}
	return math.LegacyNewDecFromIntWithPrec(v, int64(p)), nil
}

// ToUint converts a decimal back into an integer amount with p decimals, truncating.
func ToUint(d math.LegacyDec, p uint8) (math.Int, error) {
	if err := ValidatePrecision(p); err != nil {
		return math.Int{}, err
	}
	if d.IsNegative() {
		return math.Int{}, ErrNegative.Wrap(d.String())
	}
	return d.MulInt(Pow10(p)).TruncateInt(), nil
}

// ConvertPrecision rescales an integer amount from one precision to another, truncating when
// precision is lost.
func ConvertPrecision(v math.Int, from, to uint8) math.Int {
	switch {
	case from == to:
		return v
	case from < to:
		return v.Mul(Pow10(to - from))
	default:
		return v.Quo(Pow10(from - to))
	}
}

// MultiplyRatio returns floor(v * num / den).
func MultiplyRatio(v, num, den math.Int) (math.Int, error) {
	if den.IsZero() {
		return math.Int{}, ErrDivisionByZero
	}
	res := new(big.Int).Mul(v.BigInt(), num.BigInt())
	res.Quo(res, den.BigInt())
	if res.BitLen() > math.MaxBitLen {
		return math.Int{}, ErrOverflow.Wrapf("%s * %s / %s", v, num, den)
	}
	return math.NewIntFromBigInt(res), nil
}

// RatioDec returns num/den as a decimal, truncated.
func RatioDec(num, den math.Int) (math.LegacyDec, error) {
	if den.IsZero() {
		return math.LegacyDec{}, ErrDivisionByZero
	}
	return math.LegacyNewDecFromInt(num).QuoTruncate(math.LegacyNewDecFromInt(den)), nil
}

// MulDecTruncate returns floor(v * d).
func MulDecTruncate(v math.Int, d math.LegacyDec) math.Int {
	return d.MulInt(v).TruncateInt()
}

// Diff returns |a - b|.
func Diff(a, b math.LegacyDec) math.LegacyDec {
	if a.GT(b) {
		return a.Sub(b)
	}
	return b.Sub(a)
}

// DiffInt returns |a - b|.
func DiffInt(a, b math.Int) math.Int {
	if a.GT(b) {
		return a.Sub(b)
	}
	return b.Sub(a)
}

// SaturatingSub returns max(a - b, 0).
func SaturatingSub(a, b math.Int) math.Int {
	if a.LTE(b) {
		return math.ZeroInt()
	}
	return a.Sub(b)
}

// SaturatingSubDec returns max(a - b, 0).
func SaturatingSubDec(a, b math.LegacyDec) math.LegacyDec {
	if a.LTE(b) {
		return math.LegacyZeroDec()
	}
	return a.Sub(b)
}

// MinDec returns the smaller of a and b.
func MinDec(a, b math.LegacyDec) math.LegacyDec {
	if a.LT(b) {
		return a
	}
	return b
}

// MaxDec returns the larger of a and b.
func MaxDec(a, b math.LegacyDec) math.LegacyDec {
	if a.GT(b) {
		return a
	}
	return b
}

// CheckSwapParameters rejects swaps against an empty pool or with a zero amount.
func CheckSwapParameters(pools []math.Int, amount math.Int) error {
	for _, p := range pools {
		if !p.IsPositive() {
			return ErrEmptyPool
		}
	}
	if !amount.IsPositive() {
		return ErrZeroAmount
	}
	return nil
}
