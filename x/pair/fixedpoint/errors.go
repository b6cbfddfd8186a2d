package fixedpoint

import (
	"strings"

	"cosmossdk.io/errors"
)

// Codespace is the error codespace of the pool math packages.
const Codespace = "pairmath"

var (
	ErrOverflow           = errors.Register(Codespace, 2, "arithmetic overflow")
	ErrDivisionByZero     = errors.Register(Codespace, 3, "division by zero")
	ErrConvergence        = errors.Register(Codespace, 4, "newton method did not converge")
	ErrEmptyPool          = errors.Register(Codespace, 5, "One of the pools is empty")
	ErrZeroAmount         = errors.Register(Codespace, 6, "Swap amount must not be zero")
	ErrInvalidPrecision   = errors.Register(Codespace, 7, "invalid precision")
	ErrNegative           = errors.Register(Codespace, 8, "negative value")
	ErrNotEnoughLiquidity = errors.Register(Codespace, 9, "Not enough liquidity")
	ErrMinimumLiquidity   = errors.Register(Codespace, 10, "Initial liquidity must be more than the minimum liquidity amount")
	ErrLiquidityTooSmall  = errors.Register(Codespace, 11, "Provided liquidity amount is too small")

	ErrIncorrectAmp       = errors.Register(Codespace, 20, "Amp coefficient is out of bounds")
	ErrMaxAmpChange       = errors.Register(Codespace, 21, "The difference between the old and new amp or gamma value exceeds the limit")
	ErrMinAmpChangingTime = errors.Register(Codespace, 22, "Amp coefficient cannot be changed more often than once per day")
	ErrInvalidPoolParams  = errors.Register(Codespace, 23, "invalid pool parameters")
)

// Recover turns a panic raised by math.Int or math.LegacyDec into a typed error.
// It must be deferred directly by a function with a named error result.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	msg := ""
	switch v := r.(type) {
	case error:
		msg = v.Error()
	case string:
		msg = v
	default:
		panic(r)
	}
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "division by zero") || strings.Contains(lower, "divide by zero") {
		*err = ErrDivisionByZero.Wrap(msg)
		return
	}
	*err = ErrOverflow.Wrap(msg)
}
