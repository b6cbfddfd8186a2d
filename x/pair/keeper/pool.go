package keeper

import (
	"encoding/json"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/pcl"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

// pairContext is everything an operation knows about the pair it runs against.
type pairContext struct {
	ctx        sdk.Context
	cfg        *types.Config
	addr       sdk.AccAddress
	precisions [2]uint8
	fees       types.FeeInfo
	now        uint64
	height     uint64
}

// swapOutcome is a priced swap. curve carries the decimal result of a concentrated pair.
type swapOutcome struct {
	types.SwapResponse
	curve *pcl.SwapResult
}

// curve is the pricing logic of one pair type. pools are always the reserves before the
// operation, with any inbound funds already subtracted.
type curve interface {
	// accrue ticks the time weighted accumulators to the current block.
	accrue(pc *pairContext, pools [2]math.Int) error
	// provide returns the LP amount minted to the provider. On the first provide totalShare is zero
	// and the locked minimum is not part of the result.
	provide(pc *pairContext, pools, deposits [2]math.Int, totalShare math.Int, slippage math.LegacyDec) (math.Int, error)
	// withdrawImbalanced returns the LP amount to burn for an exact withdrawal.
	withdrawImbalanced(pc *pairContext, pools, amounts [2]math.Int, totalShare math.Int) (math.Int, error)
	// afterWithdraw runs with the reserves and the LP supply left after a withdrawal.
	afterWithdraw(pc *pairContext, pools [2]math.Int, totalShare math.Int) error
	simulate(pc *pairContext, pools [2]math.Int, offerIdx int, offer math.Int) (swapOutcome, error)
	// afterSwap updates the curve state once a swap settled.
	afterSwap(pc *pairContext, pools [2]math.Int, offerIdx int, offer math.Int, out swapOutcome, totalShare math.Int) error
	reverse(pc *pairContext, pools [2]math.Int, askIdx int, ask math.Int) (types.ReverseSimulationResponse, error)
	updateConfig(pc *pairContext, raw json.RawMessage) error
	params(pc *pairContext) (json.RawMessage, error)
	computeD(pc *pairContext, pools [2]math.Int) (math.LegacyDec, error)
}

func (k Keeper) curveOf(t types.PairType) (curve, error) {
	switch t {
	case types.PairTypeXYK:
		return xykCurve{k: k}, nil
	case types.PairTypeStable:
		return stableCurve{k: k}, nil
	case types.PairTypeConcentrated:
		return concentratedCurve{k: k}, nil
	default:
		return nil, types.ErrInvalidParams.Wrapf("unknown pair type %q", string(t))
	}
}

// loadPair reads everything an operation on pair needs.
func (k Keeper) loadPair(ctx sdk.Context, pair sdk.AccAddress) (*pairContext, curve, error) {
	cfg, err := k.GetConfig(ctx, pair)
	if err != nil {
		return nil, nil, err
	}
	precisions, err := k.getPrecisions(ctx, pair)
	if err != nil {
		return nil, nil, err
	}
	fees, err := k.factory.FeeInfo(ctx, cfg.PairInfo.PairType)
	if err != nil {
		return nil, nil, err
	}
	c, err := k.curveOf(cfg.PairInfo.PairType)
	if err != nil {
		return nil, nil, err
	}
	return &pairContext{
		ctx:        ctx,
		cfg:        &cfg,
		addr:       pair,
		precisions: precisions,
		fees:       fees,
		now:        blockTime(ctx),
		height:     blockHeight(ctx),
	}, c, nil
}

// loadBoundPair is loadPair for operations that need the LP token.
func (k Keeper) loadBoundPair(ctx sdk.Context, pair sdk.AccAddress) (*pairContext, curve, error) {
	pc, c, err := k.loadPair(ctx, pair)
	if err != nil {
		return nil, nil, err
	}
	if !pc.cfg.LPBound() {
		return nil, nil, types.ErrLPTokenPending.Wrap(pair.String())
	}
	return pc, c, nil
}

func (k Keeper) savePair(pc *pairContext) error {
	return k.SetConfig(pc.ctx, pc.addr, *pc.cfg)
}

// queryPools reads the balances the pair account holds of both assets.
func (k Keeper) queryPools(pc *pairContext) ([2]math.Int, error) {
	var pools [2]math.Int
	for i, info := range pc.cfg.PairInfo.AssetInfos {
		if info.IsNative() {
			pools[i] = k.bank.GetBalance(pc.ctx, pc.addr, info.NativeToken.Denom).Amount
			continue
		}
		token, err := sdk.AccAddressFromBech32(info.Token.ContractAddr)
		if err != nil {
			return pools, err
		}
		if pools[i], err = k.tokens.Balance(pc.ctx, token, pc.addr); err != nil {
			return pools, err
		}
	}
	return pools, nil
}

func (k Keeper) totalShare(pc *pairContext) math.Int {
	return k.lp.Supply(pc.ctx, pc.cfg.PairInfo.LiquidityToken)
}

// sendAsset pays amount of info from the pair to recipient.
func (k Keeper) sendAsset(pc *pairContext, info types.AssetInfo, to sdk.AccAddress, amount math.Int) error {
	if !amount.IsPositive() {
		return nil
	}
	if info.IsNative() {
		return k.bank.SendCoins(pc.ctx, pc.addr, to, sdk.NewCoins(sdk.NewCoin(info.NativeToken.Denom, amount)))
	}
	token, err := sdk.AccAddressFromBech32(info.Token.ContractAddr)
	if err != nil {
		return err
	}
	return k.tokens.Transfer(pc.ctx, token, pc.addr, to, amount)
}

// creditFunds moves the coins attached to a message into the pair.
func (k Keeper) creditFunds(ctx sdk.Context, pair sdk.AccAddress, info types.MessageInfo) error {
	if info.Funds.IsZero() {
		return nil
	}
	return k.bank.SendCoins(ctx, info.Sender, pair, info.Funds)
}

// assertFunds checks that the native amounts of assets were attached, and nothing else.
func assertFunds(assets []types.Asset, funds sdk.Coins) error {
	expected := sdk.NewCoins()
	for _, a := range assets {
		if a.Info.IsNative() && a.Amount.IsPositive() {
			expected = expected.Add(sdk.NewCoin(a.Info.NativeToken.Denom, a.Amount))
		}
	}
	if !expected.Equal(funds) {
		return types.ErrFundsMismatch.Wrapf("expected %s, got %s", expected, funds)
	}
	return nil
}

// orderAssets maps assets onto the pair's asset order.
func orderAssets(pc *pairContext, assets []types.Asset) ([2]math.Int, error) {
	amounts := [2]math.Int{math.ZeroInt(), math.ZeroInt()}
	for _, a := range assets {
		idx, err := pc.cfg.PairInfo.AssetIndex(a.Info)
		if err != nil {
			return amounts, err
		}
		amounts[idx] = a.Amount
	}
	return amounts, nil
}

func pairAssets(pc *pairContext, amounts [2]math.Int) []types.Asset {
	infos := pc.cfg.PairInfo.AssetInfos
	return []types.Asset{types.NewAsset(infos[0], amounts[0]), types.NewAsset(infos[1], amounts[1])}
}

func slippageOrDefault(s *math.LegacyDec) (math.LegacyDec, error) {
	if s == nil {
		return types.DefaultSlippage, nil
	}
	if s.IsNegative() || s.GT(types.MaxAllowedSlippage) {
		return math.LegacyDec{}, types.ErrAllowedSpreadAssertion.Wrapf("%s exceeds %s", s, types.MaxAllowedSlippage)
	}
	return *s, nil
}

// assertMaxSpread checks a swap against the caller's price expectation. returnAmount is before
// commission.
func assertMaxSpread(beliefPrice, maxSpread *math.LegacyDec, offer, returnAmount, spread math.Int) error {
	limit, err := slippageOrDefault(maxSpread)
	if err != nil {
		return err
	}
	if beliefPrice != nil {
		if !beliefPrice.IsPositive() {
			return types.ErrInvalidMsg.Wrap("belief price must be positive")
		}
		expected := math.LegacyNewDecFromInt(offer).QuoTruncate(*beliefPrice).TruncateInt()
		if returnAmount.GTE(expected) {
			return nil
		}
		ratio, err := fixedpoint.RatioDec(expected.Sub(returnAmount), expected)
		if err != nil {
			return err
		}
		if ratio.GT(limit) {
			return types.ErrMaxSpreadAssertion.Wrapf("spread %s exceeds %s", ratio, limit)
		}
		return nil
	}
	total := returnAmount.Add(spread)
	if total.IsZero() {
		return nil
	}
	ratio, err := fixedpoint.RatioDec(spread, total)
	if err != nil {
		return err
	}
	if ratio.GT(limit) {
		return types.ErrMaxSpreadAssertion.Wrapf("spread %s exceeds %s", ratio, limit)
	}
	return nil
}

// splitCommission carves the maker fee and the fee share out of a commission. The maker fee is
// only taken when the factory has a fee address.
func splitCommission(pc *pairContext, commission math.Int) (maker, share math.Int) {
	maker = math.ZeroInt()
	if pc.fees.FeeAddress != "" && !pc.fees.MakerFeeRate.IsNil() {
		maker = fixedpoint.MulDecTruncate(commission, pc.fees.MakerFeeRate)
	}
	share = math.MinInt(fixedpoint.MulDecTruncate(commission, pc.cfg.FeeShare.Rate()), commission.Sub(maker))
	return maker, share
}

func (pc *pairContext) makerRate() math.LegacyDec {
	if pc.fees.FeeAddress == "" || pc.fees.MakerFeeRate.IsNil() {
		return math.LegacyZeroDec()
	}
	return pc.fees.MakerFeeRate
}

// snapshot records post-operation reserves when balance tracking is on.
func (k Keeper) snapshot(pc *pairContext, pools [2]math.Int) error {
	if !pc.cfg.TrackAssetBalances {
		return nil
	}
	for i, info := range pc.cfg.PairInfo.AssetInfos {
		if err := k.saveBalance(pc.ctx, pc.addr, info, pc.height, pools[i]); err != nil {
			return err
		}
	}
	return nil
}

// enableTracking turns balance snapshots on and records the current reserves.
func (k Keeper) enableTracking(pc *pairContext) error {
	if pc.cfg.TrackAssetBalances {
		return types.ErrTrackingAlreadyEnabled
	}
	pc.cfg.TrackAssetBalances = true
	pools, err := k.queryPools(pc)
	if err != nil {
		return err
	}
	return k.snapshot(pc, pools)
}

func (k Keeper) recordReserves(pc *pairContext, pools [2]math.Int, totalShare math.Int) {
	pair := pc.addr.String()
	for i, info := range pc.cfg.PairInfo.AssetInfos {
		f, _ := math.LegacyNewDecFromInt(pools[i]).Float64()
		k.metrics.PoolReserves.WithLabelValues(pair, info.String()).Set(f)
	}
	f, _ := math.LegacyNewDecFromInt(totalShare).Float64()
	k.metrics.LPTokenSupply.WithLabelValues(pair).Set(f)
}

func (k Keeper) countOp(pairType types.PairType, action string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	k.metrics.OperationsTotal.WithLabelValues(string(pairType), action, status).Inc()
}

// toDecs converts raw pool amounts into real units.
func toDecs(pc *pairContext, amounts [2]math.Int) ([2]math.LegacyDec, error) {
	var out [2]math.LegacyDec
	for i := range amounts {
		d, err := fixedpoint.WithPrecision(amounts[i], pc.precisions[i])
		if err != nil {
			return out, err
		}
		out[i] = d
	}
	return out, nil
}
