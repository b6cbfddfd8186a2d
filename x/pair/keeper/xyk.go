package keeper

import (
	"encoding/json"

	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/oracle"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/xyk"
)

type xykCurve struct {
	k Keeper
}

var _ curve = xykCurve{}

func (c xykCurve) accrue(pc *pairContext, pools [2]math.Int) error {
	return c.k.accrueCumulative(pc, pools, xykDeltas(pools))
}

func xykDeltas(pools [2]math.Int) deltaFunc {
	return func(dt uint64) ([2]math.Int, error) {
		return oracle.XYKDeltas(pools, dt)
	}
}

// assertXYKSlippage rejects deposits whose ratio is too far from the pool's.
func assertXYKSlippage(deposits, pools [2]math.Int, tolerance math.LegacyDec) error {
	oneMinus := math.LegacyOneDec().Sub(tolerance)
	depositRatio, err := fixedpoint.RatioDec(deposits[1], deposits[0])
	if err != nil {
		return err
	}
	poolRatio, err := fixedpoint.RatioDec(pools[1], pools[0])
	if err != nil {
		return err
	}
	inverseDeposit, err := fixedpoint.RatioDec(deposits[0], deposits[1])
	if err != nil {
		return err
	}
	inversePool, err := fixedpoint.RatioDec(pools[0], pools[1])
	if err != nil {
		return err
	}
	if depositRatio.MulTruncate(oneMinus).GT(poolRatio) || inverseDeposit.MulTruncate(oneMinus).GT(inversePool) {
		return types.ErrMaxSlippageAssertion
	}
	return nil
}

func (c xykCurve) provide(_ *pairContext, pools, deposits [2]math.Int, totalShare math.Int, slippage math.LegacyDec) (math.Int, error) {
	if deposits[0].IsZero() || deposits[1].IsZero() {
		return math.Int{}, types.ErrInvalidZeroAmount.Wrap("both assets must be provided")
	}
	if totalShare.IsZero() {
		return xyk.InitialShare(deposits[0], deposits[1])
	}
	if pools[0].IsZero() || pools[1].IsZero() {
		return math.Int{}, types.ErrEmptyPool
	}
	if err := assertXYKSlippage(deposits, pools, slippage); err != nil {
		return math.Int{}, err
	}
	share, err := xyk.ProvideShare(deposits, pools, totalShare)
	if err != nil {
		return math.Int{}, err
	}
	if share.IsZero() {
		return math.Int{}, fixedpoint.ErrLiquidityTooSmall
	}
	return share, nil
}

func (xykCurve) withdrawImbalanced(*pairContext, [2]math.Int, [2]math.Int, math.Int) (math.Int, error) {
	return math.Int{}, types.ErrImbalancedWithdraw
}

func (xykCurve) afterWithdraw(*pairContext, [2]math.Int, math.Int) error {
	return nil
}

func (xykCurve) simulate(pc *pairContext, pools [2]math.Int, offerIdx int, offer math.Int) (swapOutcome, error) {
	res, err := xyk.ComputeSwap(pools[offerIdx], pools[1-offerIdx], offer, pc.fees.TotalFeeRate)
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

func (xykCurve) afterSwap(*pairContext, [2]math.Int, int, math.Int, swapOutcome, math.Int) error {
	return nil
}

func (xykCurve) reverse(pc *pairContext, pools [2]math.Int, askIdx int, ask math.Int) (types.ReverseSimulationResponse, error) {
	res, err := xyk.ComputeOfferAmount(pools[1-askIdx], pools[askIdx], ask, pc.fees.TotalFeeRate)
	if err != nil {
		return types.ReverseSimulationResponse{}, err
	}
	return types.ReverseSimulationResponse{
		OfferAmount:      res.OfferAmount,
		SpreadAmount:     res.SpreadAmount,
		CommissionAmount: res.CommissionAmount,
	}, nil
}

func (c xykCurve) updateConfig(pc *pairContext, raw json.RawMessage) error {
	var upd types.XYKPoolUpdateParams
	if err := types.DecodeUnion(raw, &upd); err != nil {
		return err
	}
	switch {
	case upd.EnableAssetBalancesTracking != nil:
		return c.k.enableTracking(pc)
	case upd.EnableFeeShare != nil:
		fs := upd.EnableFeeShare.Config()
		if err := types.ValidateFeeShare(fs); err != nil {
			return err
		}
		pc.cfg.FeeShare = fs
	case upd.DisableFeeShare != nil:
		pc.cfg.FeeShare = nil
	default:
		return types.ErrInvalidMsg.Wrap("unknown xyk update")
	}
	return nil
}

func (xykCurve) params(pc *pairContext) (json.RawMessage, error) {
	return json.Marshal(struct {
		TrackAssetBalances bool                  `json:"track_asset_balances"`
		FeeShare           *types.FeeShareConfig `json:"fee_share,omitempty"`
	}{pc.cfg.TrackAssetBalances, pc.cfg.FeeShare})
}

func (xykCurve) computeD(*pairContext, [2]math.Int) (math.LegacyDec, error) {
	return math.LegacyDec{}, types.ErrNotSupported.Wrap("constant product pairs have no D")
}
