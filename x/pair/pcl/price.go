package pcl

import (
	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
)

// PriceState tracks the oracle and the profit of a pair. Prices are asset 0 per asset 1.
type PriceState struct {
	OraclePrice     math.LegacyDec `json:"oracle_price"`
	LastPrice       math.LegacyDec `json:"last_price"`
	PriceScale      math.LegacyDec `json:"price_scale"`
	LastPriceUpdate uint64         `json:"last_price_update"`
	XcpProfit       math.LegacyDec `json:"xcp_profit"`
	XcpProfitReal   math.LegacyDec `json:"xcp_profit_real"`
	XcpProfitLosses math.LegacyDec `json:"xcp_profit_losses"`
}

// tickOracle decays the oracle price toward the previous last price by 0.5^(dt/ma_half_time).
func (ps *PriceState) tickOracle(params PoolParams, now uint64) error {
	if now <= ps.LastPriceUpdate {
		return nil
	}
	if params.MaHalfTime == 0 {
		return fixedpoint.ErrDivisionByZero.Wrap("ma_half_time")
	}
	arg := math.LegacyNewDec(int64(now - ps.LastPriceUpdate)).QuoTruncate(math.LegacyNewDec(int64(params.MaHalfTime)))
	alpha, err := fixedpoint.HalfPow(arg)
	if err != nil {
		return err
	}
	ps.OraclePrice = ps.LastPrice.MulTruncate(math.LegacyOneDec().Sub(alpha)).Add(ps.OraclePrice.MulTruncate(alpha))
	ps.LastPriceUpdate = now
	return nil
}

// TickOracle advances only the EMA oracle. Withdrawals use it since they do not trade.
func (s *PoolState) TickOracle(params PoolParams, now uint64) error {
	ps := s.PriceState
	if err := ps.tickOracle(params, now); err != nil {
		return err
	}
	s.PriceState = ps
	return nil
}

// RebaseProfit sets xcp_profit_real to the value per LP unit of internal balances xs.
func (s *PoolState) RebaseProfit(now uint64, totalLP math.LegacyDec, xs [NCoins]math.LegacyDec) (err error) {
	defer fixedpoint.Recover(&err)
	if !totalLP.IsPositive() {
		return nil
	}
	d, err := CalcD(xs, s.AmpGamma(now))
	if err != nil {
		return err
	}
	xcp, err := GetXcp(d, s.PriceState.PriceScale)
	if err != nil {
		return err
	}
	s.PriceState.XcpProfitReal = xcp.QuoTruncate(totalLP)
	return nil
}

// InitProfit marks the first provide.
func (s *PoolState) InitProfit() {
	s.PriceState.XcpProfit = math.LegacyOneDec()
	s.PriceState.XcpProfitReal = math.LegacyOneDec()
}

// UpdatePrice runs after every trade-like operation: it ticks the oracle, books the change of
// xCP profit against the loss guard, and repegs price_scale toward the oracle when enough profit
// was accumulated. xs are internal balances after the operation, totalLP the LP supply after it.
// The state is left untouched when an error is returned.
func (s *PoolState) UpdatePrice(params PoolParams, now uint64, totalLP math.LegacyDec, xs [NCoins]math.LegacyDec, curPrice math.LegacyDec) (repegged bool, err error) {
	defer fixedpoint.Recover(&err)

	ag := s.AmpGamma(now)
	ps := s.PriceState
	if err := ps.tickOracle(params, now); err != nil {
		return false, err
	}
	ps.LastPrice = curPrice

	d, err := CalcD(xs, ag)
	if err != nil {
		return false, err
	}
	xcp, err := GetXcp(d, ps.PriceScale)
	if err != nil {
		return false, err
	}

	if ps.XcpProfitReal.IsPositive() {
		if !totalLP.IsPositive() {
			return false, fixedpoint.ErrDivisionByZero.Wrap("total LP supply")
		}
		xcpReal := xcp.QuoTruncate(totalLP)
		if !s.IsRamping(now) {
			if xcpReal.LT(ps.XcpProfitReal) {
				drop := ps.XcpProfitReal.Sub(xcpReal)
				if drop.GT(params.AllowedXcpProfitDrop) {
					return false, ErrXcpProfitDropped.Wrapf("drop %s exceeds %s", drop, params.AllowedXcpProfitDrop)
				}
				ps.XcpProfitLosses = ps.XcpProfitLosses.Add(drop)
				if ps.XcpProfitLosses.GT(params.XcpProfitLossesThreshold) {
					return false, ErrLossLimitReached.Wrapf("losses %s exceed %s", ps.XcpProfitLosses, params.XcpProfitLossesThreshold)
				}
			} else {
				ps.XcpProfitLosses = fixedpoint.SaturatingSubDec(ps.XcpProfitLosses, xcpReal.Sub(ps.XcpProfitReal))
			}
		}
		ps.XcpProfit = ps.XcpProfit.MulTruncate(xcpReal).QuoTruncate(ps.XcpProfitReal)
		ps.XcpProfitReal = xcpReal
	}

	repegged, err = ps.repeg(params, ag, totalLP, xs)
	if err != nil {
		return false, err
	}
	s.PriceState = ps
	return repegged, nil
}

// repeg moves price_scale toward the oracle if the pool keeps more than half of its profit.
func (ps *PriceState) repeg(params PoolParams, ag AmpGamma, totalLP math.LegacyDec, xs [NCoins]math.LegacyDec) (bool, error) {
	if !totalLP.IsPositive() || !ps.XcpProfitReal.IsPositive() {
		return false, nil
	}
	one := math.LegacyOneDec()
	norm := fixedpoint.Diff(ps.OraclePrice.QuoTruncate(ps.PriceScale), one)
	scaleDelta := fixedpoint.MaxDec(params.MinPriceScaleDelta, norm.QuoTruncate(ten))
	if !norm.IsPositive() || norm.LT(scaleDelta) {
		return false, nil
	}
	threshold := ps.XcpProfit.Sub(one).QuoTruncate(two).Add(params.RepegProfitThreshold)
	if ps.XcpProfitReal.Sub(one).LTE(threshold) {
		return false, nil
	}

	newScale := ps.PriceScale.MulTruncate(norm.Sub(scaleDelta)).Add(scaleDelta.MulTruncate(ps.OraclePrice)).QuoTruncate(norm)
	if !newScale.IsPositive() {
		return false, nil
	}
	moved := [NCoins]math.LegacyDec{xs[0], xs[1].MulTruncate(newScale).QuoTruncate(ps.PriceScale)}
	d, err := CalcD(moved, ag)
	if err != nil {
		return false, err
	}
	xcp, err := GetXcp(d, newScale)
	if err != nil {
		return false, err
	}
	xcpReal := xcp.QuoTruncate(totalLP)
	if xcpReal.MulInt64(2).LTE(ps.XcpProfit.Add(one)) {
		return false, nil
	}
	ps.PriceScale = newScale
	ps.XcpProfitReal = xcpReal
	return true, nil
}
