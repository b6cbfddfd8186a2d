package keeper

import (
	"encoding/json"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/pcl"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

type concentratedCurve struct {
	k Keeper
}

var _ curve = concentratedCurve{}

func (concentratedCurve) state(pc *pairContext) (*types.ConcentratedState, error) {
	if pc.cfg.Concentrated == nil {
		return nil, types.ErrInvalidParams.Wrap("concentrated state is missing")
	}
	return pc.cfg.Concentrated, nil
}

func lpDec(v math.Int) (math.LegacyDec, error) {
	return fixedpoint.WithPrecision(v, pcl.LPTokenPrecision)
}

// accrue is a no-op: the EMA oracle is advanced by the price update of each operation.
func (concentratedCurve) accrue(*pairContext, [2]math.Int) error {
	return nil
}

func (c concentratedCurve) provide(pc *pairContext, pools, deposits [2]math.Int, totalShare math.Int, slippage math.LegacyDec) (math.Int, error) {
	st, err := c.state(pc)
	if err != nil {
		return math.Int{}, err
	}
	xs, err := toDecs(pc, pools)
	if err != nil {
		return math.Int{}, err
	}
	deps, err := toDecs(pc, deposits)
	if err != nil {
		return math.Int{}, err
	}
	total, err := lpDec(totalShare)
	if err != nil {
		return math.Int{}, err
	}

	res, err := pcl.Provide(xs, deps, total, st.PoolState, st.Params, pc.now)
	if err != nil {
		return math.Int{}, err
	}
	share, err := fixedpoint.ToUint(res.Share, pcl.LPTokenPrecision)
	if err != nil {
		return math.Int{}, err
	}
	if totalShare.IsZero() {
		st.PoolState.InitProfit()
		return share, nil
	}
	if share.IsZero() {
		return math.Int{}, fixedpoint.ErrLiquidityTooSmall
	}

	newTotal, err := lpDec(totalShare.Add(share))
	if err != nil {
		return math.Int{}, err
	}
	if !res.Trade {
		if err := st.PoolState.TickOracle(st.Params, pc.now); err != nil {
			return math.Int{}, err
		}
		return share, st.PoolState.RebaseProfit(pc.now, newTotal, res.NewXp)
	}

	expected, err := pcl.ExpectedShare(deps, st.PoolState.PriceState.PriceScale)
	if err != nil {
		return math.Int{}, err
	}
	if expected.GT(res.Share) && expected.Sub(res.Share).QuoTruncate(expected).GT(slippage) {
		return math.Int{}, types.ErrMaxSlippageAssertion.Wrapf("expected %s LP, got %s", expected, res.Share)
	}
	repegged, err := st.PoolState.UpdatePrice(st.Params, pc.now, newTotal, res.NewXp, res.LastPrice)
	if err != nil {
		return math.Int{}, err
	}
	c.k.afterPriceUpdate(pc, repegged)
	return share, nil
}

func (concentratedCurve) withdrawImbalanced(*pairContext, [2]math.Int, [2]math.Int, math.Int) (math.Int, error) {
	return math.Int{}, types.ErrImbalancedWithdraw
}

func (c concentratedCurve) afterWithdraw(pc *pairContext, pools [2]math.Int, totalShare math.Int) error {
	st, err := c.state(pc)
	if err != nil {
		return err
	}
	xs, err := toDecs(pc, pools)
	if err != nil {
		return err
	}
	remaining, err := lpDec(totalShare)
	if err != nil {
		return err
	}
	return st.PoolState.Withdraw(st.Params, pc.now, xs, remaining)
}

func (c concentratedCurve) simulate(pc *pairContext, pools [2]math.Int, offerIdx int, offer math.Int) (swapOutcome, error) {
	st, err := c.state(pc)
	if err != nil {
		return swapOutcome{}, err
	}
	xs, err := toDecs(pc, pools)
	if err != nil {
		return swapOutcome{}, err
	}
	offerDec, err := fixedpoint.WithPrecision(offer, pc.precisions[offerIdx])
	if err != nil {
		return swapOutcome{}, err
	}
	res, err := pcl.ComputeSwap(xs, offerIdx, offerDec, st.PoolState, st.Params, pc.now)
	if err != nil {
		return swapOutcome{}, err
	}
	res.SplitFees(pc.makerRate(), pc.cfg.FeeShare.Rate())

	askPrec := pc.precisions[1-offerIdx]
	var out swapOutcome
	for _, conv := range []struct {
		dst *math.Int
		src math.LegacyDec
	}{
		{&out.ReturnAmount, res.Dy},
		{&out.SpreadAmount, res.SpreadFee},
		{&out.CommissionAmount, res.TotalFee},
		{&out.MakerFeeAmount, res.MakerFee},
		{&out.FeeShareAmount, res.ShareFee},
	} {
		if *conv.dst, err = fixedpoint.ToUint(conv.src, askPrec); err != nil {
			return swapOutcome{}, err
		}
	}
	out.curve = &res
	return out, nil
}

func (c concentratedCurve) afterSwap(pc *pairContext, pools [2]math.Int, offerIdx int, offer math.Int, out swapOutcome, totalShare math.Int) error {
	st, err := c.state(pc)
	if err != nil {
		return err
	}
	if out.curve == nil {
		return types.ErrInvalidMsg.Wrap("swap outcome was not priced by the concentrated curve")
	}
	askIdx := 1 - offerIdx
	outflow := out.ReturnAmount.Add(out.MakerFeeAmount).Add(out.FeeShareAmount)
	after := pools
	after[offerIdx] = pools[offerIdx].Add(offer)
	after[askIdx] = pools[askIdx].Sub(outflow)

	offerDec, err := fixedpoint.WithPrecision(offer, pc.precisions[offerIdx])
	if err != nil {
		return err
	}
	if offerDec.GTE(pcl.MinTradeSize) && out.curve.Dy.GTE(pcl.MinTradeSize) {
		xs, err := toDecs(pc, after)
		if err != nil {
			return err
		}
		lastPrice, err := out.curve.LastPrice(offerDec, offerIdx)
		if err != nil {
			return err
		}
		total, err := lpDec(totalShare)
		if err != nil {
			return err
		}
		ixs := pcl.Internal(xs, st.PoolState.PriceState.PriceScale)
		repegged, err := st.PoolState.UpdatePrice(st.Params, pc.now, total, ixs, lastPrice)
		if err != nil {
			return err
		}
		c.k.afterPriceUpdate(pc, repegged)
	}

	volumes, err := tradeVolumes(pc, offerIdx, offer, outflow)
	if err != nil {
		return err
	}
	return c.k.observe(pc, volumes)
}

func (c concentratedCurve) reverse(pc *pairContext, pools [2]math.Int, askIdx int, ask math.Int) (types.ReverseSimulationResponse, error) {
	st, err := c.state(pc)
	if err != nil {
		return types.ReverseSimulationResponse{}, err
	}
	xs, err := toDecs(pc, pools)
	if err != nil {
		return types.ReverseSimulationResponse{}, err
	}
	want, err := fixedpoint.WithPrecision(ask, pc.precisions[askIdx])
	if err != nil {
		return types.ReverseSimulationResponse{}, err
	}
	res, err := pcl.ComputeOfferAmount(xs, askIdx, want, st.PoolState, st.Params, pc.now)
	if err != nil {
		return types.ReverseSimulationResponse{}, err
	}
	offer, err := fixedpoint.ToUint(res.Offer, pc.precisions[1-askIdx])
	if err != nil {
		return types.ReverseSimulationResponse{}, err
	}
	spread, err := fixedpoint.ToUint(res.SpreadFee, pc.precisions[askIdx])
	if err != nil {
		return types.ReverseSimulationResponse{}, err
	}
	fee, err := fixedpoint.ToUint(res.TotalFee, pc.precisions[askIdx])
	if err != nil {
		return types.ReverseSimulationResponse{}, err
	}
	return types.ReverseSimulationResponse{OfferAmount: offer, SpreadAmount: spread, CommissionAmount: fee}, nil
}

func (c concentratedCurve) updateConfig(pc *pairContext, raw json.RawMessage) error {
	st, err := c.state(pc)
	if err != nil {
		return err
	}
	var upd types.ConcentratedPoolUpdateParams
	if err := types.DecodeUnion(raw, &upd); err != nil {
		return err
	}
	switch {
	case upd.Update != nil:
		params, err := st.Params.Apply(*upd.Update)
		if err != nil {
			return err
		}
		st.Params = params
	case upd.Promote != nil:
		next := pcl.AmpGamma{Amp: upd.Promote.NextAmp, Gamma: upd.Promote.NextGamma}
		return st.PoolState.StartRamp(next, upd.Promote.FutureTime, pc.now)
	case upd.StopChangingAmpGamma != nil:
		st.PoolState.StopRamp(pc.now)
	case upd.EnableFeeShare != nil:
		fs := upd.EnableFeeShare.Config()
		if err := types.ValidateFeeShare(fs); err != nil {
			return err
		}
		pc.cfg.FeeShare = fs
	case upd.DisableFeeShare != nil:
		pc.cfg.FeeShare = nil
	case upd.UpdateOrderbookParams != nil:
		ob, err := upd.UpdateOrderbookParams.Apply(st.Orderbook)
		if err != nil {
			return err
		}
		st.Orderbook = ob
	case upd.EnableAssetBalancesTracking != nil:
		return c.k.enableTracking(pc)
	default:
		return types.ErrInvalidMsg.Wrap("unknown concentrated update")
	}
	return nil
}

func (c concentratedCurve) params(pc *pairContext) (json.RawMessage, error) {
	st, err := c.state(pc)
	if err != nil {
		return nil, err
	}
	params, err := json.Marshal(st.Params)
	if err != nil {
		return nil, err
	}
	priceState, err := json.Marshal(st.PoolState.PriceState)
	if err != nil {
		return nil, err
	}
	ag := st.PoolState.AmpGamma(pc.now)
	return json.Marshal(types.ConcentratedParamsResponse{
		Amp:        ag.Amp,
		Gamma:      ag.Gamma,
		Params:     params,
		PriceState: priceState,
		FeeShare:   pc.cfg.FeeShare,
		Orderbook:  st.Orderbook,
	})
}

func (c concentratedCurve) computeD(pc *pairContext, pools [2]math.Int) (math.LegacyDec, error) {
	st, err := c.state(pc)
	if err != nil {
		return math.LegacyDec{}, err
	}
	xs, err := toDecs(pc, pools)
	if err != nil {
		return math.LegacyDec{}, err
	}
	return pcl.CalcD(pcl.Internal(xs, st.PoolState.PriceState.PriceScale), st.PoolState.AmpGamma(pc.now))
}

// afterPriceUpdate reports an adopted repeg.
func (k Keeper) afterPriceUpdate(pc *pairContext, repegged bool) {
	if !repegged {
		return
	}
	ps := pc.cfg.Concentrated.PoolState.PriceState
	pc.ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeRepeg,
		sdk.NewAttribute(types.AttributeKeyPair, pc.addr.String()),
		sdk.NewAttribute(types.AttributeKeyPriceScale, ps.PriceScale.String()),
		sdk.NewAttribute(types.AttributeKeyXcpProfitReal, ps.XcpProfitReal.String()),
	))
	k.metrics.Repegs.WithLabelValues(pc.addr.String()).Inc()
	k.Logger(pc.ctx).Info("price scale moved", "pair", pc.addr.String(), "price_scale", ps.PriceScale.String())
}

func orderbookEnabled(pc *pairContext) bool {
	return pc.cfg.Concentrated != nil && pc.cfg.Concentrated.Orderbook.Enabled
}

// reconcileOrderbook settles the pair's resting orders so the reserves read next are complete.
func (k Keeper) reconcileOrderbook(pc *pairContext) error {
	if k.orderbook == nil || !orderbookEnabled(pc) {
		return nil
	}
	flows, err := k.orderbook.Reconcile(pc.ctx, pc.addr, pc.cfg.Concentrated.Orderbook.Subaccount)
	if err != nil {
		return err
	}
	pc.ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeOrderbookReconcile,
		sdk.NewAttribute(types.AttributeKeyPair, pc.addr.String()),
		sdk.NewAttribute(types.AttributeKeyAssets, flows[0].String()+", "+flows[1].String()),
	))
	return nil
}

// placeOrders refreshes the resting orders around the current price scale.
func (k Keeper) placeOrders(pc *pairContext, pools [2]math.Int) error {
	if k.orderbook == nil || !orderbookEnabled(pc) {
		return nil
	}
	st := pc.cfg.Concentrated
	return k.orderbook.PlaceOrders(pc.ctx, pc.addr, st.Orderbook, st.PoolState.PriceState.PriceScale, pools)
}
