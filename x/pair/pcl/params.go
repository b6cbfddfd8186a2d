package pcl

import (
	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
)

// PoolParams are the owner-tunable parameters of a pair.
type PoolParams struct {
	MidFee                   math.LegacyDec `json:"mid_fee"`
	OutFee                   math.LegacyDec `json:"out_fee"`
	FeeGamma                 math.LegacyDec `json:"fee_gamma"`
	RepegProfitThreshold     math.LegacyDec `json:"repeg_profit_threshold"`
	MinPriceScaleDelta       math.LegacyDec `json:"min_price_scale_delta"`
	MaHalfTime               uint64         `json:"ma_half_time"`
	AllowedXcpProfitDrop     math.LegacyDec `json:"allowed_xcp_profit_drop"`
	XcpProfitLossesThreshold math.LegacyDec `json:"xcp_profit_losses_threshold"`
}

// UpdatePoolParams carries the fields an owner wants to change.
type UpdatePoolParams struct {
	MidFee                   *math.LegacyDec `json:"mid_fee,omitempty"`
	OutFee                   *math.LegacyDec `json:"out_fee,omitempty"`
	FeeGamma                 *math.LegacyDec `json:"fee_gamma,omitempty"`
	RepegProfitThreshold     *math.LegacyDec `json:"repeg_profit_threshold,omitempty"`
	MinPriceScaleDelta       *math.LegacyDec `json:"min_price_scale_delta,omitempty"`
	MaHalfTime               *uint64         `json:"ma_half_time,omitempty"`
	AllowedXcpProfitDrop     *math.LegacyDec `json:"allowed_xcp_profit_drop,omitempty"`
	XcpProfitLossesThreshold *math.LegacyDec `json:"xcp_profit_losses_threshold,omitempty"`
}

func inRange(name string, v, lo, hi math.LegacyDec) error {
	if v.IsNil() || v.LT(lo) || v.GT(hi) {
		return fixedpoint.ErrInvalidPoolParams.Wrapf("%s must be in [%s, %s]", name, lo, hi)
	}
	return nil
}

// Validate checks every parameter against its bounds.
func (p PoolParams) Validate() error {
	if err := inRange("mid_fee", p.MidFee, MinFee, MaxFee); err != nil {
		return err
	}
	if err := inRange("out_fee", p.OutFee, MinFee, MaxFee); err != nil {
		return err
	}
	if p.MidFee.GTE(p.OutFee) {
		return fixedpoint.ErrInvalidPoolParams.Wrap("mid_fee must be less than out_fee")
	}
	if err := inRange("fee_gamma", p.FeeGamma, MinFeeGamma, MaxFeeGamma); err != nil {
		return err
	}
	if err := inRange("repeg_profit_threshold", p.RepegProfitThreshold, math.LegacyZeroDec(), MaxRepegProfitThreshold); err != nil {
		return err
	}
	if err := inRange("min_price_scale_delta", p.MinPriceScaleDelta, math.LegacyZeroDec(), MaxMinPriceScaleDelta); err != nil {
		return err
	}
	if p.MaHalfTime == 0 || p.MaHalfTime > MaxMaHalfTime {
		return fixedpoint.ErrInvalidPoolParams.Wrapf("ma_half_time must be in [1, %d]", MaxMaHalfTime)
	}
	if err := inRange("allowed_xcp_profit_drop", p.AllowedXcpProfitDrop, math.LegacyZeroDec(), math.LegacyOneDec()); err != nil {
		return err
	}
	return inRange("xcp_profit_losses_threshold", p.XcpProfitLossesThreshold, math.LegacyZeroDec(), math.LegacyOneDec())
}

// Apply returns p with the set fields of u, validated.
func (p PoolParams) Apply(u UpdatePoolParams) (PoolParams, error) {
	if u.MidFee != nil {
		p.MidFee = *u.MidFee
	}
	if u.OutFee != nil {
		p.OutFee = *u.OutFee
	}
	if u.FeeGamma != nil {
		p.FeeGamma = *u.FeeGamma
	}
	if u.RepegProfitThreshold != nil {
		p.RepegProfitThreshold = *u.RepegProfitThreshold
	}
	if u.MinPriceScaleDelta != nil {
		p.MinPriceScaleDelta = *u.MinPriceScaleDelta
	}
	if u.MaHalfTime != nil {
		p.MaHalfTime = *u.MaHalfTime
	}
	if u.AllowedXcpProfitDrop != nil {
		p.AllowedXcpProfitDrop = *u.AllowedXcpProfitDrop
	}
	if u.XcpProfitLossesThreshold != nil {
		p.XcpProfitLossesThreshold = *u.XcpProfitLossesThreshold
	}
	return p, p.Validate()
}

// Fee returns the dynamic fee rate for internal balances xp. It is mid_fee at balance and tends
// to out_fee as the pool leaves balance, at a pace set by fee_gamma.
func (p PoolParams) Fee(xp [NCoins]math.LegacyDec) (fee math.LegacyDec, err error) {
	defer fixedpoint.Recover(&err)
	sum := xp[0].Add(xp[1])
	if !sum.IsPositive() {
		return p.OutFee, nil
	}
	k := xp[0].MulTruncate(xp[1]).MulTruncate(four).QuoTruncate(sum.MulTruncate(sum))
	k = p.FeeGamma.QuoTruncate(p.FeeGamma.Add(math.LegacyOneDec()).Sub(k))
	if k.LTE(FeeTol) {
		k = math.LegacyZeroDec()
	}
	return k.MulTruncate(p.MidFee).Add(math.LegacyOneDec().Sub(k).MulTruncate(p.OutFee)), nil
}

// ProvideFee is the fee rate charged on the imbalanced part of a deposit. deposits and xp are
// internal values.
func (p PoolParams) ProvideFee(deposits, xp [NCoins]math.LegacyDec) (math.LegacyDec, error) {
	sum := deposits[0].Add(deposits[1])
	if sum.IsZero() {
		return math.LegacyZeroDec(), nil
	}
	fee, err := p.Fee(xp)
	if err != nil {
		return math.LegacyDec{}, err
	}
	avg := sum.QuoInt64(NCoins)
	diffs := fixedpoint.Diff(deposits[0], avg).Add(fixedpoint.Diff(deposits[1], avg))
	return fee.MulTruncate(diffs).QuoTruncate(sum.MulInt64(NCoins)), nil
}
