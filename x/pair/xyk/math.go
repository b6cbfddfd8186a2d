// Package xyk implements constant-product (x*y=k) pricing and LP share issuance.
package xyk

import (
	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
)

// MinimumLiquidityAmount is locked in the pair on the first provide.
var MinimumLiquidityAmount = math.NewInt(1_000)

// SwapResult is the outcome of selling offer for ask. ReturnAmount is net of commission.
type SwapResult struct {
	ReturnAmount     math.Int
	SpreadAmount     math.Int
	CommissionAmount math.Int
}

// OfferResult is the outcome of a reverse simulation.
type OfferResult struct {
	OfferAmount      math.Int
	SpreadAmount     math.Int
	CommissionAmount math.Int
}

// ComputeSwap returns the ask amount for offerAmount against pools (offerPool, askPool).
// The spread is measured against the marginal price before the trade.
func ComputeSwap(offerPool, askPool, offerAmount math.Int, commissionRate math.LegacyDec) (res SwapResult, err error) {
	defer fixedpoint.Recover(&err)
	if err := fixedpoint.CheckSwapParameters([]math.Int{offerPool, askPool}, offerAmount); err != nil {
		return SwapResult{}, err
	}

	cp := offerPool.Mul(askPool)
	after, err := fixedpoint.RatioDec(cp, offerPool.Add(offerAmount))
	if err != nil {
		return SwapResult{}, err
	}
	gross := math.LegacyNewDecFromInt(askPool).Sub(after).TruncateInt()

	price, err := fixedpoint.RatioDec(askPool, offerPool)
	if err != nil {
		return SwapResult{}, err
	}
	spread := fixedpoint.SaturatingSub(fixedpoint.MulDecTruncate(offerAmount, price), gross)
	commission := fixedpoint.MulDecTruncate(gross, commissionRate)

	return SwapResult{
		ReturnAmount:     gross.Sub(commission),
		SpreadAmount:     spread,
		CommissionAmount: commission,
	}, nil
}

// ComputeOfferAmount returns how much must be offered to receive askAmount after commission.
func ComputeOfferAmount(offerPool, askPool, askAmount math.Int, commissionRate math.LegacyDec) (res OfferResult, err error) {
	defer fixedpoint.Recover(&err)
	if err := fixedpoint.CheckSwapParameters([]math.Int{offerPool, askPool}, askAmount); err != nil {
		return OfferResult{}, err
	}

	oneMinusCommission := math.LegacyOneDec().Sub(commissionRate)
	if !oneMinusCommission.IsPositive() {
		return OfferResult{}, fixedpoint.ErrDivisionByZero.Wrap("commission rate is 100%")
	}
	invOneMinusCommission := math.LegacyOneDec().QuoTruncate(oneMinusCommission)
	beforeCommission := fixedpoint.MulDecTruncate(askAmount, invOneMinusCommission)
	if beforeCommission.GTE(askPool) {
		return OfferResult{}, fixedpoint.ErrNotEnoughLiquidity.Wrapf("ask amount %s exceeds pool %s", askAmount, askPool)
	}

	cp := offerPool.Mul(askPool)
	offer := cp.Quo(askPool.Sub(beforeCommission)).Sub(offerPool)
	if offer.IsNegative() {
		return OfferResult{}, fixedpoint.ErrNegative.Wrap("offer amount")
	}

	price, err := fixedpoint.RatioDec(askPool, offerPool)
	if err != nil {
		return OfferResult{}, err
	}
	return OfferResult{
		OfferAmount:      offer,
		SpreadAmount:     fixedpoint.SaturatingSub(fixedpoint.MulDecTruncate(offer, price), beforeCommission),
		CommissionAmount: fixedpoint.MulDecTruncate(beforeCommission, commissionRate),
	}, nil
}

// InitialShare returns the LP amount minted to the first depositor. MinimumLiquidityAmount on top
// of it is minted to the pair itself.
func InitialShare(deposit0, deposit1 math.Int) (math.Int, error) {
	liquidity, err := fixedpoint.SqrtProduct(deposit0, deposit1)
	if err != nil {
		return math.Int{}, err
	}
	if liquidity.LTE(MinimumLiquidityAmount) {
		return math.Int{}, fixedpoint.ErrMinimumLiquidity
	}
	return liquidity.Sub(MinimumLiquidityAmount), nil
}

// ProvideShare returns the LP amount for a deposit into a pool that already has liquidity. Any
// excess over the current ratio stays in the pool as a donation.
func ProvideShare(deposits, pools [2]math.Int, totalShare math.Int) (math.Int, error) {
	s0, err := fixedpoint.MultiplyRatio(deposits[0], totalShare, pools[0])
	if err != nil {
		return math.Int{}, err
	}
	s1, err := fixedpoint.MultiplyRatio(deposits[1], totalShare, pools[1])
	if err != nil {
		return math.Int{}, err
	}
	return math.MinInt(s0, s1), nil
}

// Invariant returns k = x*y.
func Invariant(x, y math.Int) (k math.Int, err error) {
	defer fixedpoint.Recover(&err)
	return x.Mul(y), nil
}
