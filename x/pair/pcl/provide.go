package pcl

import (
	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
)

// ProvideResult is the outcome of a deposit in real units.
type ProvideResult struct {
	Share math.LegacyDec
	// NewXp are the internal balances after the deposit.
	NewXp [NCoins]math.LegacyDec
	// Trade is set when the deposit is imbalanced enough to be priced as a trade at LastPrice.
	Trade     bool
	LastPrice math.LegacyDec
}

// Provide computes the LP share for deposits on top of real balances xs. A zero totalShare is the
// first provide, for which MinimumLiquidityAmount is withheld from the share.
func Provide(xs, deposits [NCoins]math.LegacyDec, totalShare math.LegacyDec, state PoolState, params PoolParams, now uint64) (res ProvideResult, err error) {
	defer fixedpoint.Recover(&err)

	ps := state.PriceState.PriceScale
	ag := state.AmpGamma(now)
	newXp := Internal([NCoins]math.LegacyDec{xs[0].Add(deposits[0]), xs[1].Add(deposits[1])}, ps)
	newD, err := CalcD(newXp, ag)
	if err != nil {
		return ProvideResult{}, err
	}

	if !totalShare.IsPositive() {
		xcp, err := GetXcp(newD, ps)
		if err != nil {
			return ProvideResult{}, err
		}
		if xcp.LTE(MinimumLiquidityAmount) {
			return ProvideResult{}, fixedpoint.ErrMinimumLiquidity
		}
		return ProvideResult{Share: xcp.Sub(MinimumLiquidityAmount), NewXp: newXp}, nil
	}

	oldD, err := CalcD(Internal(xs, ps), ag)
	if err != nil {
		return ProvideResult{}, err
	}
	share := fixedpoint.SaturatingSubDec(totalShare.MulTruncate(newD).QuoTruncate(oldD), totalShare)
	fee, err := params.ProvideFee(Internal(deposits, ps), newXp)
	if err != nil {
		return ProvideResult{}, err
	}
	share = share.MulTruncate(math.LegacyOneDec().Sub(fee))
	res = ProvideResult{Share: share, NewXp: newXp}
	if !share.IsPositive() {
		return res, nil
	}

	ratio := share.QuoTruncate(totalShare.Add(share))
	balanced := [NCoins]math.LegacyDec{
		newXp[0].MulTruncate(ratio),
		newXp[1].MulTruncate(ratio).QuoTruncate(ps),
	}
	diff := [NCoins]math.LegacyDec{
		fixedpoint.Diff(deposits[0], balanced[0]),
		fixedpoint.Diff(deposits[1], balanced[1]),
	}
	if diff[0].GTE(MinTradeSize) && diff[1].GTE(MinTradeSize) {
		res.Trade = true
		res.LastPrice = diff[0].QuoTruncate(diff[1])
	}
	return res, nil
}

// ExpectedShare is the LP amount a deposit would receive in a balanced pool with no accrued
// profit: sqrt(V/2 * V/(2*price_scale)) where V is the deposit value in asset 0.
func ExpectedShare(deposits [NCoins]math.LegacyDec, priceScale math.LegacyDec) (share math.LegacyDec, err error) {
	defer fixedpoint.Recover(&err)
	value := deposits[0].Add(deposits[1].MulTruncate(priceScale))
	half := value.QuoInt64(2)
	return fixedpoint.Sqrt(half.MulTruncate(value.QuoTruncate(priceScale.MulInt64(2))))
}

// Withdraw re-bases the profit after burning amount of totalShare, leaving real balances xs.
// Only the EMA oracle is ticked: withdrawals do not trade.
func (s *PoolState) Withdraw(params PoolParams, now uint64, xs [NCoins]math.LegacyDec, remainingLP math.LegacyDec) error {
	next := *s
	if err := next.TickOracle(params, now); err != nil {
		return err
	}
	if remainingLP.IsPositive() && xs[0].IsPositive() && xs[1].IsPositive() {
		if err := next.RebaseProfit(now, remainingLP, Internal(xs, next.PriceState.PriceScale)); err != nil {
			return err
		}
	}
	*s = next
	return nil
}
