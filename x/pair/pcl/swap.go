package pcl

import (
	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
)

// SwapResult is a swap in real units of the ask asset. Dy is net of TotalFee.
type SwapResult struct {
	Dy        math.LegacyDec
	SpreadFee math.LegacyDec
	TotalFee  math.LegacyDec
	MakerFee  math.LegacyDec
	ShareFee  math.LegacyDec
}

// SplitFees carves the maker and fee-share portions out of the total fee. The fee share is
// capped so both portions never exceed the total.
func (r *SwapResult) SplitFees(makerRate, shareRate math.LegacyDec) {
	r.MakerFee = r.TotalFee.MulTruncate(makerRate)
	r.ShareFee = fixedpoint.MinDec(r.TotalFee.MulTruncate(shareRate), r.TotalFee.Sub(r.MakerFee))
}

// Outflow is what leaves the pool's ask reserve: the user's amount plus the forwarded fees.
func (r SwapResult) Outflow() math.LegacyDec {
	return r.Dy.Add(r.MakerFee).Add(r.ShareFee)
}

// LastPrice is the executed price of the trade in asset 0 per asset 1.
func (r SwapResult) LastPrice(offerAmount math.LegacyDec, offerIdx int) (math.LegacyDec, error) {
	out := r.Outflow()
	if offerIdx == 0 {
		if !out.IsPositive() {
			return math.LegacyDec{}, fixedpoint.ErrDivisionByZero.Wrap("empty swap")
		}
		return offerAmount.QuoTruncate(out), nil
	}
	return out.QuoTruncate(offerAmount), nil
}

// Internal multiplies the second asset by price_scale.
func Internal(xs [NCoins]math.LegacyDec, priceScale math.LegacyDec) [NCoins]math.LegacyDec {
	return [NCoins]math.LegacyDec{xs[0], xs[1].MulTruncate(priceScale)}
}

// ComputeSwap sells offer of asset offerIdx. xs are the pool's real balances before the trade.
func ComputeSwap(xs [NCoins]math.LegacyDec, offerIdx int, offer math.LegacyDec, state PoolState, params PoolParams, now uint64) (res SwapResult, err error) {
	defer fixedpoint.Recover(&err)
	askIdx := 1 - offerIdx
	if !xs[0].IsPositive() || !xs[1].IsPositive() {
		return SwapResult{}, fixedpoint.ErrEmptyPool
	}
	if !offer.IsPositive() {
		return SwapResult{}, fixedpoint.ErrZeroAmount
	}

	ps := state.PriceState.PriceScale
	ag := state.AmpGamma(now)
	ixs := Internal(xs, ps)
	d, err := CalcD(ixs, ag)
	if err != nil {
		return SwapResult{}, err
	}

	offerInternal := offer
	if offerIdx == 1 {
		offerInternal = offer.MulTruncate(ps)
	}
	ixs[offerIdx] = ixs[offerIdx].Add(offerInternal)
	newY, err := CalcY(ixs, d, ag, askIdx)
	if err != nil {
		return SwapResult{}, err
	}
	if newY.GTE(ixs[askIdx]) {
		return SwapResult{}, fixedpoint.ErrNotEnoughLiquidity.Wrap("swap amount is too small")
	}
	dy := ixs[askIdx].Sub(newY)
	ixs[askIdx] = newY

	var expected math.LegacyDec
	if askIdx == 1 {
		dy = dy.QuoTruncate(ps)
		expected = offer.QuoTruncate(ps)
	} else {
		expected = offerInternal
	}

	feeRate, err := params.Fee(ixs)
	if err != nil {
		return SwapResult{}, err
	}
	totalFee := feeRate.MulTruncate(dy)
	return SwapResult{
		Dy:        dy.Sub(totalFee),
		SpreadFee: fixedpoint.SaturatingSubDec(expected, dy),
		TotalFee:  totalFee,
		MakerFee:  math.LegacyZeroDec(),
		ShareFee:  math.LegacyZeroDec(),
	}, nil
}

// OfferResult is a reverse simulation: the offer in real units of the offer asset, and the
// spread and fee in real units of the ask asset.
type OfferResult struct {
	Offer     math.LegacyDec
	SpreadFee math.LegacyDec
	TotalFee  math.LegacyDec
}

// ComputeOfferAmount returns the offer needed to receive want of asset askIdx. The fee rate is not
// known before the trade so the worst case out_fee is assumed.
func ComputeOfferAmount(xs [NCoins]math.LegacyDec, askIdx int, want math.LegacyDec, state PoolState, params PoolParams, now uint64) (res OfferResult, err error) {
	defer fixedpoint.Recover(&err)
	offerIdx := 1 - askIdx
	if !xs[0].IsPositive() || !xs[1].IsPositive() {
		return OfferResult{}, fixedpoint.ErrEmptyPool
	}
	if !want.IsPositive() {
		return OfferResult{}, fixedpoint.ErrZeroAmount
	}

	ps := state.PriceState.PriceScale
	ag := state.AmpGamma(now)
	ixs := Internal(xs, ps)
	d, err := CalcD(ixs, ag)
	if err != nil {
		return OfferResult{}, err
	}

	wantInternal := want
	if askIdx == 1 {
		wantInternal = want.MulTruncate(ps)
	}
	beforeFee := wantInternal.QuoTruncate(math.LegacyOneDec().Sub(params.OutFee))
	fee := beforeFee.Sub(wantInternal)
	if beforeFee.GTE(ixs[askIdx]) {
		return OfferResult{}, fixedpoint.ErrNotEnoughLiquidity.Wrapf("ask amount %s exceeds pool %s", want, xs[askIdx])
	}
	ixs[askIdx] = ixs[askIdx].Sub(beforeFee)

	newY, err := CalcY(ixs, d, ag, offerIdx)
	if err != nil {
		return OfferResult{}, err
	}
	if newY.LTE(ixs[offerIdx]) {
		return OfferResult{}, fixedpoint.ErrNegative.Wrap("offer amount")
	}
	dy := newY.Sub(ixs[offerIdx])
	spread := fixedpoint.SaturatingSubDec(dy, beforeFee)

	if offerIdx == 1 {
		dy = dy.QuoTruncate(ps)
	} else {
		spread = spread.QuoTruncate(ps)
		fee = fee.QuoTruncate(ps)
	}
	return OfferResult{Offer: dy, SpreadFee: spread, TotalFee: fee}, nil
}
