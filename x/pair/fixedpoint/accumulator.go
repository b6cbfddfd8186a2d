package fixedpoint

import (
	"cosmossdk.io/math"
	"github.com/holiman/uint256"
)

var mask128 = new(uint256.Int).Rsh(new(uint256.Int).SetAllOne(), 128)

// WrappingAdd128 returns (acc + delta) mod 2^128.
func WrappingAdd128(acc, delta math.Int) math.Int {
	a := wrap128(acc)
	d := wrap128(delta)
	a.Add(a, d)
	a.And(a, mask128)
	return math.NewIntFromBigInt(a.ToBig())
}

// WrappingSub128 returns (a - b) mod 2^128, the elapsed amount between two accumulator readings.
func WrappingSub128(a, b math.Int) math.Int {
	x := wrap128(a)
	y := wrap128(b)
	x.Sub(x, y)
	x.And(x, mask128)
	return math.NewIntFromBigInt(x.ToBig())
}

func wrap128(v math.Int) *uint256.Int {
	if v.IsNil() {
		return new(uint256.Int)
	}
	u, _ := uint256.FromBig(v.BigInt())
	return u.And(u, mask128)
}
