package stableswap

import (
	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
)

// MinimumLiquidityAmount is locked in the pair on the first provide.
var MinimumLiquidityAmount = math.NewInt(1_000)

// Pool is a snapshot of a stableswap pair: raw reserves plus the decimals of each asset.
type Pool struct {
	Amp        uint64
	Reserves   [NCoins]math.Int
	Precisions [NCoins]uint8
}

// SwapResult is the outcome of a swap. ReturnAmount is net of commission.
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

// GreatestPrecision is the working precision of the solvers and the LP token.
func (p Pool) GreatestPrecision() uint8 {
	if p.Precisions[0] > p.Precisions[1] {
		return p.Precisions[0]
	}
	return p.Precisions[1]
}

func (p Pool) toGreatest(i int, v math.Int) math.Int {
	return fixedpoint.ConvertPrecision(v, p.Precisions[i], p.GreatestPrecision())
}

func (p Pool) fromGreatest(i int, v math.Int) math.Int {
	return fixedpoint.ConvertPrecision(v, p.GreatestPrecision(), p.Precisions[i])
}

func (p Pool) normalized() [NCoins]math.Int {
	return [NCoins]math.Int{p.toGreatest(0, p.Reserves[0]), p.toGreatest(1, p.Reserves[1])}
}

// D returns the invariant in greatest-precision units.
func (p Pool) D() (math.Int, error) {
	xp := p.normalized()
	return ComputeD(p.Amp, xp[0], xp[1])
}

// ComputeSwap sells offerAmount of asset offerIdx for the other asset.
// Stable assets trade 1:1 at balance, so any shortfall against the offer is spread.
func (p Pool) ComputeSwap(offerIdx int, offerAmount math.Int, commissionRate math.LegacyDec) (res SwapResult, err error) {
	defer fixedpoint.Recover(&err)
	askIdx := 1 - offerIdx
	if err := fixedpoint.CheckSwapParameters(p.Reserves[:], offerAmount); err != nil {
		return SwapResult{}, err
	}

	gross, err := p.grossReturn(offerIdx, offerAmount)
	if err != nil {
		return SwapResult{}, err
	}
	offerInAsk := fixedpoint.ConvertPrecision(offerAmount, p.Precisions[offerIdx], p.Precisions[askIdx])
	commission := fixedpoint.MulDecTruncate(gross, commissionRate)
	return SwapResult{
		ReturnAmount:     gross.Sub(commission),
		SpreadAmount:     fixedpoint.SaturatingSub(offerInAsk, gross),
		CommissionAmount: commission,
	}, nil
}

// grossReturn is the ask amount before commission, in the ask asset's precision.
func (p Pool) grossReturn(offerIdx int, offerAmount math.Int) (math.Int, error) {
	askIdx := 1 - offerIdx
	xp := p.normalized()
	d, err := ComputeD(p.Amp, xp[0], xp[1])
	if err != nil {
		return math.Int{}, err
	}
	y, err := CalcY(p.Amp, xp[offerIdx].Add(p.toGreatest(offerIdx, offerAmount)), d)
	if err != nil {
		return math.Int{}, err
	}
	// one unit is kept in the pool against rounding in the solver
	dy := fixedpoint.SaturatingSub(xp[askIdx].Sub(y), math.OneInt())
	return p.fromGreatest(askIdx, dy), nil
}

// ComputeOfferAmount returns how much of the other asset must be offered to receive askAmount of
// asset askIdx after commission.
func (p Pool) ComputeOfferAmount(askIdx int, askAmount math.Int, commissionRate math.LegacyDec) (res OfferResult, err error) {
	defer fixedpoint.Recover(&err)
	offerIdx := 1 - askIdx
	if err := fixedpoint.CheckSwapParameters(p.Reserves[:], askAmount); err != nil {
		return OfferResult{}, err
	}

	oneMinusCommission := math.LegacyOneDec().Sub(commissionRate)
	if !oneMinusCommission.IsPositive() {
		return OfferResult{}, fixedpoint.ErrDivisionByZero.Wrap("commission rate is 100%")
	}
	beforeCommission := fixedpoint.MulDecTruncate(askAmount, math.LegacyOneDec().QuoTruncate(oneMinusCommission))
	if beforeCommission.GTE(p.Reserves[askIdx]) {
		return OfferResult{}, fixedpoint.ErrNotEnoughLiquidity.Wrapf("ask amount %s exceeds pool %s", askAmount, p.Reserves[askIdx])
	}

	xp := p.normalized()
	d, err := ComputeD(p.Amp, xp[0], xp[1])
	if err != nil {
		return OfferResult{}, err
	}
	y, err := CalcY(p.Amp, xp[askIdx].Sub(p.toGreatest(askIdx, beforeCommission)), d)
	if err != nil {
		return OfferResult{}, err
	}
	if y.LTE(xp[offerIdx]) {
		return OfferResult{}, fixedpoint.ErrNegative.Wrap("offer amount")
	}
	// rounded up by one unit so the offer always covers the requested ask
	offer := p.fromGreatest(offerIdx, y.Sub(xp[offerIdx]).AddRaw(1))

	offerInAsk := fixedpoint.ConvertPrecision(offer, p.Precisions[offerIdx], p.Precisions[askIdx])
	return OfferResult{
		OfferAmount:      offer,
		SpreadAmount:     fixedpoint.SaturatingSub(offerInAsk, beforeCommission),
		CommissionAmount: fixedpoint.MulDecTruncate(beforeCommission, commissionRate),
	}, nil
}

// UnitReturn is the gross amount of the other asset received for one whole unit of asset fromIdx,
// in raw units of the received asset. It backs the cumulative price oracle.
func (p Pool) UnitReturn(fromIdx int) (math.Int, error) {
	return p.grossReturn(fromIdx, fixedpoint.Pow10(p.Precisions[fromIdx]))
}

// ImbalanceFee is the share of the swap fee charged on the imbalanced part of a provide or withdraw.
func ImbalanceFee(totalFeeRate math.LegacyDec) math.LegacyDec {
	return totalFeeRate.MulInt64(NCoins).QuoInt64(4 * (NCoins - 1))
}

// ProvideShare returns the LP amount minted for deposits (raw units). When totalShare is zero this
// is the first provide and MinimumLiquidityAmount must additionally be minted to the pair.
func (p Pool) ProvideShare(deposits [NCoins]math.Int, totalShare math.Int, totalFeeRate math.LegacyDec) (share math.Int, err error) {
	defer fixedpoint.Recover(&err)

	old := p.normalized()
	updated := [NCoins]math.Int{
		old[0].Add(p.toGreatest(0, deposits[0])),
		old[1].Add(p.toGreatest(1, deposits[1])),
	}
	depositD, err := ComputeD(p.Amp, updated[0], updated[1])
	if err != nil {
		return math.Int{}, err
	}

	if totalShare.IsZero() {
		if depositD.LTE(MinimumLiquidityAmount) {
			return math.Int{}, fixedpoint.ErrMinimumLiquidity
		}
		return depositD.Sub(MinimumLiquidityAmount), nil
	}

	initD, err := ComputeD(p.Amp, old[0], old[1])
	if err != nil {
		return math.Int{}, err
	}
	if initD.IsZero() {
		return math.Int{}, fixedpoint.ErrEmptyPool
	}

	afterFeeD, err := p.chargeImbalance(old, updated, initD, depositD, totalFeeRate)
	if err != nil {
		return math.Int{}, err
	}
	share, err = fixedpoint.MultiplyRatio(totalShare, fixedpoint.SaturatingSub(afterFeeD, initD), initD)
	if err != nil {
		return math.Int{}, err
	}
	if share.IsZero() {
		return math.Int{}, fixedpoint.ErrLiquidityTooSmall
	}
	return share, nil
}

// ImbalancedWithdrawBurn returns the LP amount that must be burnt to withdraw exactly amounts (raw
// units). The result is rounded against the withdrawer.
func (p Pool) ImbalancedWithdrawBurn(amounts [NCoins]math.Int, totalShare math.Int, totalFeeRate math.LegacyDec) (burn math.Int, err error) {
	defer fixedpoint.Recover(&err)

	old := p.normalized()
	var updated [NCoins]math.Int
	for i := range updated {
		w := p.toGreatest(i, amounts[i])
		if w.GT(old[i]) {
			return math.Int{}, fixedpoint.ErrNotEnoughLiquidity.Wrapf("withdraw %s exceeds pool %s", amounts[i], p.Reserves[i])
		}
		updated[i] = old[i].Sub(w)
	}
	initD, err := ComputeD(p.Amp, old[0], old[1])
	if err != nil {
		return math.Int{}, err
	}
	if initD.IsZero() {
		return math.Int{}, fixedpoint.ErrEmptyPool
	}
	withdrawD, err := ComputeD(p.Amp, updated[0], updated[1])
	if err != nil {
		return math.Int{}, err
	}
	afterFeeD, err := p.chargeImbalance(old, updated, initD, withdrawD, totalFeeRate)
	if err != nil {
		return math.Int{}, err
	}
	if afterFeeD.GT(initD) {
		return math.Int{}, fixedpoint.ErrNegative.Wrap("withdraw increases the invariant")
	}
	burn, err = fixedpoint.MultiplyRatio(totalShare, initD.Sub(afterFeeD), initD)
	if err != nil {
		return math.Int{}, err
	}
	return burn.AddRaw(1), nil
}

// chargeImbalance deducts the imbalance fee from updated and returns the resulting invariant.
func (p Pool) chargeImbalance(old, updated [NCoins]math.Int, initD, newD math.Int, totalFeeRate math.LegacyDec) (math.Int, error) {
	fee := ImbalanceFee(totalFeeRate)
	var charged [NCoins]math.Int
	for i := range charged {
		ideal, err := fixedpoint.MultiplyRatio(newD, old[i], initD)
		if err != nil {
			return math.Int{}, err
		}
		penalty := fixedpoint.MulDecTruncate(fixedpoint.DiffInt(ideal, updated[i]), fee)
		if penalty.GT(updated[i]) {
			return math.Int{}, fixedpoint.ErrNotEnoughLiquidity.Wrap("imbalance fee exceeds balance")
		}
		charged[i] = updated[i].Sub(penalty)
	}
	return ComputeD(p.Amp, charged[0], charged[1])
}
