package keeper

import (
	"context"
	"encoding/json"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

// Pair returns the pair info.
func (k Keeper) Pair(ctx context.Context, pair sdk.AccAddress) (types.PairInfo, error) {
	cfg, err := k.GetConfig(ctx, pair)
	if err != nil {
		return types.PairInfo{}, err
	}
	return cfg.PairInfo, nil
}

// Pool returns the reserves and the LP supply.
func (k Keeper) Pool(ctx context.Context, pair sdk.AccAddress) (types.PoolResponse, error) {
	pc, _, err := k.loadPair(sdk.UnwrapSDKContext(ctx), pair)
	if err != nil {
		return types.PoolResponse{}, err
	}
	return k.poolResponse(pc)
}

func (k Keeper) poolResponse(pc *pairContext) (types.PoolResponse, error) {
	pools, err := k.queryPools(pc)
	if err != nil {
		return types.PoolResponse{}, err
	}
	total := math.ZeroInt()
	if pc.cfg.LPBound() {
		total = k.totalShare(pc)
	}
	assets := pairAssets(pc, pools)
	return types.PoolResponse{Assets: [2]types.Asset{assets[0], assets[1]}, TotalShare: total}, nil
}

// Share returns the assets amount of LP would withdraw.
func (k Keeper) Share(ctx context.Context, pair sdk.AccAddress, amount math.Int) ([]types.Asset, error) {
	pool, err := k.Pool(ctx, pair)
	if err != nil {
		return nil, err
	}
	out := make([]types.Asset, 0, 2)
	for _, a := range pool.Assets {
		refund := math.ZeroInt()
		if pool.TotalShare.IsPositive() {
			if refund, err = fixedpoint.MultiplyRatio(a.Amount, amount, pool.TotalShare); err != nil {
				return nil, err
			}
		}
		out = append(out, types.NewAsset(a.Info, refund))
	}
	return out, nil
}

// Simulation prices selling q.OfferAsset against the current reserves.
func (k Keeper) Simulation(ctx context.Context, pair sdk.AccAddress, q types.SimulationQuery) (types.SimulationResponse, error) {
	pc, c, err := k.loadPair(sdk.UnwrapSDKContext(ctx), pair)
	if err != nil {
		return types.SimulationResponse{}, err
	}
	offerIdx, err := pc.cfg.PairInfo.AssetIndex(q.OfferAsset.Info)
	if err != nil {
		return types.SimulationResponse{}, err
	}
	if q.AskAssetInfo != nil && !q.AskAssetInfo.Equal(pc.cfg.PairInfo.AssetInfos[1-offerIdx]) {
		return types.SimulationResponse{}, types.ErrAssetMismatch.Wrapf("ask asset %s", q.AskAssetInfo)
	}
	if q.OfferAsset.Amount.IsNil() || !q.OfferAsset.Amount.IsPositive() {
		return types.SimulationResponse{}, types.ErrSwapZeroAmount
	}
	pools, err := k.queryPools(pc)
	if err != nil {
		return types.SimulationResponse{}, err
	}
	out, err := c.simulate(pc, pools, offerIdx, q.OfferAsset.Amount)
	if err != nil {
		return types.SimulationResponse{}, err
	}
	return types.SimulationResponse{
		ReturnAmount:     out.ReturnAmount,
		SpreadAmount:     out.SpreadAmount,
		CommissionAmount: out.CommissionAmount,
	}, nil
}

// ReverseSimulation prices the offer needed to receive q.AskAsset.
func (k Keeper) ReverseSimulation(ctx context.Context, pair sdk.AccAddress, q types.ReverseSimulationQuery) (types.ReverseSimulationResponse, error) {
	pc, c, err := k.loadPair(sdk.UnwrapSDKContext(ctx), pair)
	if err != nil {
		return types.ReverseSimulationResponse{}, err
	}
	askIdx, err := pc.cfg.PairInfo.AssetIndex(q.AskAsset.Info)
	if err != nil {
		return types.ReverseSimulationResponse{}, err
	}
	if q.OfferAssetInfo != nil && !q.OfferAssetInfo.Equal(pc.cfg.PairInfo.AssetInfos[1-askIdx]) {
		return types.ReverseSimulationResponse{}, types.ErrAssetMismatch.Wrapf("offer asset %s", q.OfferAssetInfo)
	}
	if q.AskAsset.Amount.IsNil() || !q.AskAsset.Amount.IsPositive() {
		return types.ReverseSimulationResponse{}, types.ErrSwapZeroAmount
	}
	pools, err := k.queryPools(pc)
	if err != nil {
		return types.ReverseSimulationResponse{}, err
	}
	return c.reverse(pc, pools, askIdx, q.AskAsset.Amount)
}

// CumulativePrices returns the accumulators as they would be at the current block.
func (k Keeper) CumulativePrices(ctx context.Context, pair sdk.AccAddress) (types.CumulativePricesResponse, error) {
	pc, c, err := k.loadPair(sdk.UnwrapSDKContext(ctx), pair)
	if err != nil {
		return types.CumulativePricesResponse{}, err
	}
	pool, err := k.poolResponse(pc)
	if err != nil {
		return types.CumulativePricesResponse{}, err
	}
	pools := [2]math.Int{pool.Assets[0].Amount, pool.Assets[1].Amount}

	var deltas deltaFunc
	switch c := c.(type) {
	case xykCurve:
		deltas = xykDeltas(pools)
	case stableCurve:
		p, err := c.pool(pc, pools)
		if err != nil {
			return types.CumulativePricesResponse{}, err
		}
		deltas = stableDeltas(p)
	default:
		return types.CumulativePricesResponse{}, types.ErrNotSupported.Wrap("concentrated pairs keep no cumulative prices")
	}
	prices, err := k.getCumulativePrices(pc.ctx, pair)
	if err != nil {
		return types.CumulativePricesResponse{}, err
	}
	if prices, err = tickCumulative(pc, prices, deltas); err != nil {
		return types.CumulativePricesResponse{}, err
	}
	return types.CumulativePricesResponse{
		Assets:           pool.Assets,
		TotalShare:       pool.TotalShare,
		CumulativePrices: prices,
	}, nil
}

// Observe reads the observation buffer secondsAgo before the current block.
func (k Keeper) Observe(ctx context.Context, pair sdk.AccAddress, secondsAgo uint64) (types.ObservationResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	cfg, err := k.GetConfig(ctx, pair)
	if err != nil {
		return types.ObservationResponse{}, err
	}
	if cfg.PairInfo.PairType == types.PairTypeXYK {
		return types.ObservationResponse{}, types.ErrNotSupported.Wrap("xyk pairs keep no observations")
	}
	obs, err := k.observations(ctx, pair).Lookup(blockTime(sdkCtx), secondsAgo)
	if err != nil {
		return types.ObservationResponse{}, err
	}
	return types.ObservationResponse{Timestamp: obs.Ts, Price: obs.Price, PriceSMA: obs.PriceSMA}, nil
}

// AssetBalanceAt returns the reserve snapshot of info at or before height, or nil when none was
// recorded.
func (k Keeper) AssetBalanceAt(ctx context.Context, pair sdk.AccAddress, q types.AssetBalanceAtQuery) (*math.Int, error) {
	cfg, err := k.GetConfig(ctx, pair)
	if err != nil {
		return nil, err
	}
	if _, err := cfg.PairInfo.AssetIndex(q.AssetInfo); err != nil {
		return nil, err
	}
	return k.balanceAt(ctx, pair, q.AssetInfo, q.BlockHeight)
}

// Config returns the public configuration, flavor params included.
func (k Keeper) Config(ctx context.Context, pair sdk.AccAddress) (types.ConfigResponse, error) {
	pc, c, err := k.loadPair(sdk.UnwrapSDKContext(ctx), pair)
	if err != nil {
		return types.ConfigResponse{}, err
	}
	params, err := c.params(pc)
	if err != nil {
		return types.ConfigResponse{}, err
	}
	return types.ConfigResponse{
		BlockTimeLast: pc.cfg.BlockTimeLast,
		Params:        params,
		Owner:         k.owner(pc.ctx, pc.cfg).String(),
		FactoryAddr:   pc.cfg.FactoryAddr,
	}, nil
}

// ComputeD returns the invariant of a stable or concentrated pair.
func (k Keeper) ComputeD(ctx context.Context, pair sdk.AccAddress) (math.LegacyDec, error) {
	pc, c, err := k.loadPair(sdk.UnwrapSDKContext(ctx), pair)
	if err != nil {
		return math.LegacyDec{}, err
	}
	pools, err := k.queryPools(pc)
	if err != nil {
		return math.LegacyDec{}, err
	}
	return c.computeD(pc, pools)
}

// Query answers a JSON encoded QueryMsg with a JSON encoded response.
func (k Keeper) Query(ctx context.Context, pair sdk.AccAddress, raw json.RawMessage) (json.RawMessage, error) {
	var q types.QueryMsg
	if err := types.DecodeUnion(raw, &q); err != nil {
		return nil, err
	}
	var (
		resp any
		err  error
	)
	switch {
	case q.Pair != nil:
		resp, err = k.Pair(ctx, pair)
	case q.Pool != nil:
		resp, err = k.Pool(ctx, pair)
	case q.Share != nil:
		resp, err = k.Share(ctx, pair, q.Share.Amount)
	case q.Simulation != nil:
		resp, err = k.Simulation(ctx, pair, *q.Simulation)
	case q.ReverseSimulation != nil:
		resp, err = k.ReverseSimulation(ctx, pair, *q.ReverseSimulation)
	case q.CumulativePrices != nil:
		resp, err = k.CumulativePrices(ctx, pair)
	case q.Observe != nil:
		resp, err = k.Observe(ctx, pair, q.Observe.SecondsAgo)
	case q.AssetBalanceAt != nil:
		resp, err = k.AssetBalanceAt(ctx, pair, *q.AssetBalanceAt)
	case q.Config != nil:
		resp, err = k.Config(ctx, pair)
	case q.ComputeD != nil:
		resp, err = k.ComputeD(ctx, pair)
	default:
		return nil, types.ErrInvalidMsg.Wrap("empty query")
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}
