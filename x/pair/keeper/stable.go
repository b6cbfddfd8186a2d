package keeper

import (
	"encoding/json"

	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/oracle"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/stableswap"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

type stableCurve struct {
	k Keeper
}

var _ curve = stableCurve{}

func (stableCurve) pool(pc *pairContext, pools [2]math.Int) (stableswap.Pool, error) {
	if pc.cfg.Stable == nil {
		return stableswap.Pool{}, types.ErrInvalidParams.Wrap("stable state is missing")
	}
	return stableswap.Pool{
		Amp:        pc.cfg.Stable.Current(pc.now),
		Reserves:   pools,
		Precisions: pc.precisions,
	}, nil
}

func (c stableCurve) accrue(pc *pairContext, pools [2]math.Int) error {
	p, err := c.pool(pc, pools)
	if err != nil {
		return err
	}
	return c.k.accrueCumulative(pc, pools, stableDeltas(p))
}

func stableDeltas(p stableswap.Pool) deltaFunc {
	return func(dt uint64) ([2]math.Int, error) {
		deltas := [2]math.Int{math.ZeroInt(), math.ZeroInt()}
		if !p.Reserves[0].IsPositive() || !p.Reserves[1].IsPositive() {
			return deltas, nil
		}
		for i := range deltas {
			unit, err := p.UnitReturn(i)
			if err != nil {
				return deltas, err
			}
			if deltas[i], err = oracle.RateDelta(unit, p.Precisions[1-i], dt); err != nil {
				return deltas, err
			}
		}
		return deltas, nil
	}
}

func (c stableCurve) provide(pc *pairContext, pools, deposits [2]math.Int, totalShare math.Int, _ math.LegacyDec) (math.Int, error) {
	p, err := c.pool(pc, pools)
	if err != nil {
		return math.Int{}, err
	}
	// LP amounts are in the greatest precision of the pair
	return p.ProvideShare(deposits, totalShare, pc.fees.TotalFeeRate)
}

func (c stableCurve) withdrawImbalanced(pc *pairContext, pools, amounts [2]math.Int, totalShare math.Int) (math.Int, error) {
	p, err := c.pool(pc, pools)
	if err != nil {
		return math.Int{}, err
	}
	return p.ImbalancedWithdrawBurn(amounts, totalShare, pc.fees.TotalFeeRate)
}

func (stableCurve) afterWithdraw(*pairContext, [2]math.Int, math.Int) error {
	return nil
}

func (c stableCurve) simulate(pc *pairContext, pools [2]math.Int, offerIdx int, offer math.Int) (swapOutcome, error) {
	p, err := c.pool(pc, pools)
	if err != nil {
		return swapOutcome{}, err
	}
	res, err := p.ComputeSwap(offerIdx, offer, pc.fees.TotalFeeRate)
	if err != nil {
		return swapOutcome{}, err
	}
	maker, share := splitCommission(pc, res.CommissionAmount)
	return swapOutcome{SwapResponse: types.SwapResponse{
		ReturnAmount:     res.ReturnAmount,
		SpreadAmount:     res.SpreadAmount,
		CommissionAmount: res.CommissionAmount,
		MakerFeeAmount:   maker,
		FeeShareAmount:   share,
	}}, nil
}

func (c stableCurve) afterSwap(pc *pairContext, _ [2]math.Int, offerIdx int, offer math.Int, out swapOutcome, _ math.Int) error {
	volumes, err := tradeVolumes(pc, offerIdx, offer, out.ReturnAmount.Add(out.CommissionAmount))
	if err != nil {
		return err
	}
	return c.k.observe(pc, volumes)
}

func (c stableCurve) reverse(pc *pairContext, pools [2]math.Int, askIdx int, ask math.Int) (types.ReverseSimulationResponse, error) {
	p, err := c.pool(pc, pools)
	if err != nil {
		return types.ReverseSimulationResponse{}, err
	}
	res, err := p.ComputeOfferAmount(askIdx, ask, pc.fees.TotalFeeRate)
	if err != nil {
		return types.ReverseSimulationResponse{}, err
	}
	return types.ReverseSimulationResponse{
		OfferAmount:      res.OfferAmount,
		SpreadAmount:     res.SpreadAmount,
		CommissionAmount: res.CommissionAmount,
	}, nil
}

func (c stableCurve) updateConfig(pc *pairContext, raw json.RawMessage) error {
	if pc.cfg.Stable == nil {
		return types.ErrInvalidParams.Wrap("stable state is missing")
	}
	var upd types.StablePoolUpdateParams
	if err := types.DecodeUnion(raw, &upd); err != nil {
		return err
	}
	switch {
	case upd.StartChangingAmp != nil:
		next, err := pc.cfg.Stable.Start(upd.StartChangingAmp.NextAmp, upd.StartChangingAmp.NextAmpTime, pc.now)
		if err != nil {
			return err
		}
		pc.cfg.Stable.AmpRamp = next
	case upd.StopChangingAmp != nil:
		pc.cfg.Stable.AmpRamp = pc.cfg.Stable.Stop(pc.now)
	case upd.EnableAssetBalancesTracking != nil:
		return c.k.enableTracking(pc)
	default:
		return types.ErrInvalidMsg.Wrap("unknown stable update")
	}
	return nil
}

func ampDec(scaled uint64) math.LegacyDec {
	return math.LegacyNewDecFromInt(math.NewIntFromUint64(scaled)).QuoInt64(stableswap.AmpPrecision)
}

func (stableCurve) params(pc *pairContext) (json.RawMessage, error) {
	if pc.cfg.Stable == nil {
		return nil, types.ErrInvalidParams.Wrap("stable state is missing")
	}
	r := pc.cfg.Stable.AmpRamp
	return json.Marshal(types.StableParamsResponse{
		Amp:       ampDec(r.Current(pc.now)),
		FutureAmp: ampDec(r.NextAmp),
		IsRamping: r.IsRamping(pc.now),
	})
}

func (c stableCurve) computeD(pc *pairContext, pools [2]math.Int) (math.LegacyDec, error) {
	p, err := c.pool(pc, pools)
	if err != nil {
		return math.LegacyDec{}, err
	}
	d, err := p.D()
	if err != nil {
		return math.LegacyDec{}, err
	}
	return fixedpoint.WithPrecision(d, p.GreatestPrecision())
}
