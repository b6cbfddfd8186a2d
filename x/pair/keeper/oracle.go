package keeper

import (
	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/oracle"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

type deltaFunc func(dt uint64) ([2]math.Int, error)

func initialCumulativePrices(infos [2]types.AssetInfo) []types.CumulativePrice {
	return []types.CumulativePrice{
		{From: infos[0], To: infos[1], Value: math.ZeroInt()},
		{From: infos[1], To: infos[0], Value: math.ZeroInt()},
	}
}

// tickCumulative returns prices advanced to the current block.
func tickCumulative(pc *pairContext, prices []types.CumulativePrice, deltas deltaFunc) ([]types.CumulativePrice, error) {
	if pc.now <= pc.cfg.BlockTimeLast {
		return prices, nil
	}
	if len(prices) != 2 {
		prices = initialCumulativePrices(pc.cfg.PairInfo.AssetInfos)
	}
	d, err := deltas(pc.now - pc.cfg.BlockTimeLast)
	if err != nil {
		return nil, err
	}
	next := make([]types.CumulativePrice, len(prices))
	for i, p := range prices {
		p.Value = oracle.Accumulate(p.Value, d[i])
		next[i] = p
	}
	return next, nil
}

// accrueCumulative ticks the stored accumulators with the reserves before the operation and
// stamps the block time.
func (k Keeper) accrueCumulative(pc *pairContext, pools [2]math.Int, deltas deltaFunc) error {
	if pc.now <= pc.cfg.BlockTimeLast {
		return nil
	}
	prices, err := k.getCumulativePrices(pc.ctx, pc.addr)
	if err != nil {
		return err
	}
	if prices, err = tickCumulative(pc, prices, deltas); err != nil {
		return err
	}
	if err := k.setCumulativePrices(pc.ctx, pc.addr, prices); err != nil {
		return err
	}
	pc.cfg.BlockTimeLast = pc.now
	return nil
}

// observe adds the volumes of a trade to the observation buffer. amounts follow the pair's asset
// order and are in real units.
func (k Keeper) observe(pc *pairContext, amounts [2]math.LegacyDec) error {
	pushed, err := k.observations(pc.ctx, pc.addr).Accumulate(amounts[0], amounts[1], pc.now)
	if err != nil {
		return err
	}
	if pushed {
		k.metrics.Observations.WithLabelValues(pc.addr.String()).Inc()
	}
	return nil
}

// tradeVolumes orders the offered and the returned amount of a swap by asset index.
func tradeVolumes(pc *pairContext, offerIdx int, offer, ret math.Int) ([2]math.LegacyDec, error) {
	var raw [2]math.Int
	raw[offerIdx] = offer
	raw[1-offerIdx] = ret
	return toDecs(pc, raw)
}
