package keeper_test

import (
	"encoding/json"
	"fmt"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	keepertest "github.com/astroport-fi/astroport-core-sub001/testutil/keeper"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

// stablePool creates an amp 100 uluna/uusd stable pair holding 30_000 LUNA and 20_000 USD, with
// a 0.3% commission.
func (suite *KeeperTestSuite) stablePool() sdk.AccAddress {
	suite.h.Factory.SetFees(types.PairTypeStable, types.FeeInfo{
		FeeAddress:   keepertest.FeeAddress.String(),
		TotalFeeRate: math.LegacyNewDecWithPrec(3, 3),
		MakerFeeRate: math.LegacyNewDecWithPrec(3333, 4),
	})
	pair := keepertest.CreatePair(suite.T(), suite.h, suite.ctx, types.PairTypeStable, []types.AssetInfo{luna, usd}, `{"amp":100}`)
	keepertest.Provide(suite.T(), suite.h, suite.ctx, pair, suite.alice, native(luna, 30_000_000_000), native(usd, 20_000_000_000))
	return pair
}

func (suite *KeeperTestSuite) stableUpdate(pair sdk.AccAddress, params string) error {
	return suite.h.Keeper.UpdateConfig(suite.ctx, pair, types.MessageInfo{Sender: keepertest.FactoryOwner}, types.UpdateConfigMsg{Params: []byte(params)})
}

func (suite *KeeperTestSuite) stableParams(pair sdk.AccAddress) types.StableParamsResponse {
	cfg, err := suite.h.Keeper.Config(suite.ctx, pair)
	suite.Require().NoError(err)
	var params types.StableParamsResponse
	suite.Require().NoError(json.Unmarshal(cfg.Params, &params))
	return params
}

func (suite *KeeperTestSuite) TestStableInitialShareMatchesInvariant() {
	pair := suite.stablePool()
	d, err := suite.h.Keeper.ComputeD(suite.ctx, pair)
	suite.Require().NoError(err)

	pool, err := suite.h.Keeper.Pool(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Equal(d.MulInt64(1_000_000).TruncateInt(), pool.TotalShare)
	suite.Require().Equal(pool.TotalShare.SubRaw(1_000), suite.balance(suite.alice, types.LPDenom(pair)))
}

func (suite *KeeperTestSuite) TestStableSwap() {
	pair := suite.stablePool()
	offer := native(luna, 1_500_000_000)
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.bob, coins(offer)))

	sim, err := suite.h.Keeper.Simulation(suite.ctx, pair, types.SimulationQuery{OfferAsset: offer})
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(1_487_928_894), sim.ReturnAmount)
	suite.Require().Equal(math.NewInt(7_593_888), sim.SpreadAmount)
	suite.Require().Equal(math.NewInt(4_477_218), sim.CommissionAmount)

	resp, err := suite.h.Keeper.Swap(suite.ctx, pair, types.MessageInfo{Sender: suite.bob, Funds: coins(offer)}, types.SwapMsg{
		OfferAsset: offer,
		MaxSpread:  decPtr("0.02"),
	})
	suite.Require().NoError(err)
	suite.Require().Equal(sim.ReturnAmount, resp.ReturnAmount)
	suite.Require().Equal(math.NewInt(1_492_256), resp.MakerFeeAmount)
	suite.Require().Equal(math.NewInt(1_487_928_894), suite.balance(suite.bob, "uusd"))
	suite.Require().Equal(math.NewInt(1_492_256), suite.balance(keepertest.FeeAddress, "uusd"))
	suite.Require().Equal(math.NewInt(20_000_000_000-1_487_928_894-1_492_256), suite.balance(pair, "uusd"))

	// the invariant only grows with the retained commission
	d, err := suite.h.Keeper.ComputeD(suite.ctx, pair)
	suite.Require().NoError(err)
	pool, err := suite.h.Keeper.Pool(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().True(d.MulInt64(1_000_000).TruncateInt().GTE(pool.TotalShare))
}

func (suite *KeeperTestSuite) TestStableReverseSimulation() {
	pair := suite.stablePool()
	ask := native(usd, 1_000_000_000)
	rev, err := suite.h.Keeper.ReverseSimulation(suite.ctx, pair, types.ReverseSimulationQuery{AskAsset: ask})
	suite.Require().NoError(err)
	suite.Require().True(rev.OfferAmount.GT(ask.Amount))

	sim, err := suite.h.Keeper.Simulation(suite.ctx, pair, types.SimulationQuery{OfferAsset: types.NewAsset(luna, rev.OfferAmount)})
	suite.Require().NoError(err)
	suite.Require().True(sim.ReturnAmount.GTE(ask.Amount.SubRaw(1)), "got %s", sim.ReturnAmount)
}

func (suite *KeeperTestSuite) TestStableOneSidedProvideAndImbalancedWithdraw() {
	pair := suite.stablePool()
	denom := types.LPDenom(pair)

	share := keepertest.Provide(suite.T(), suite.h, suite.ctx, pair, suite.bob, native(usd, 1_000_000_000))
	suite.Require().True(share.IsPositive())
	suite.Require().Equal(share, suite.balance(suite.bob, denom))

	lp := suite.balance(suite.alice, denom)
	want := []types.Asset{native(luna, 1_000_000_000)}

	tiny := sdk.NewCoins(sdk.NewInt64Coin(denom, 1_000))
	_, err := suite.h.Keeper.WithdrawLiquidity(suite.ctx, pair, types.MessageInfo{Sender: suite.alice, Funds: tiny}, types.WithdrawLiquidityMsg{Assets: want})
	suite.Require().ErrorIs(err, types.ErrWithdrawSlippage)

	attached := sdk.NewCoins(sdk.NewCoin(denom, lp))
	refunds, err := suite.h.Keeper.WithdrawLiquidity(suite.ctx, pair, types.MessageInfo{Sender: suite.alice, Funds: attached}, types.WithdrawLiquidityMsg{Assets: want})
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(1_000_000_000), refunds[0].Amount)
	suite.Require().True(refunds[1].Amount.IsZero())
	suite.Require().Equal(math.NewInt(1_000_000_000), suite.balance(suite.alice, "uluna"))

	// only the burnt LP leaves the withdrawer, the rest comes back
	left := suite.balance(suite.alice, denom)
	suite.Require().True(left.IsPositive())
	suite.Require().True(left.LT(lp))
	suite.Require().True(suite.balance(pair, denom).Equal(math.NewInt(1_000)))

	_, err = suite.h.Keeper.WithdrawLiquidity(suite.ctx, pair, types.MessageInfo{Sender: suite.alice, Funds: sdk.NewCoins(sdk.NewCoin(denom, left))}, types.WithdrawLiquidityMsg{
		Assets: []types.Asset{native(luna, 40_000_000_000)},
	})
	suite.Require().ErrorIs(err, types.ErrNotEnoughLiquidity)
}

func (suite *KeeperTestSuite) TestStableAmpRamp() {
	pair := suite.stablePool()
	start := uint64(suite.h.Now().Unix())

	err := suite.stableUpdate(pair, fmt.Sprintf(`{"start_changing_amp":{"next_amp":200,"next_amp_time":%d}}`, start+2*86_400))
	suite.Require().ErrorIs(err, types.ErrMinAmpChangingTime)

	suite.nextBlock(24 * time.Hour)
	now := start + 86_400
	err = suite.h.Keeper.UpdateConfig(suite.ctx, pair, types.MessageInfo{Sender: suite.bob}, types.UpdateConfigMsg{Params: []byte(`{"stop_changing_amp":{}}`)})
	suite.Require().ErrorIs(err, types.ErrUnauthorized)
	err = suite.stableUpdate(pair, fmt.Sprintf(`{"start_changing_amp":{"next_amp":1001,"next_amp_time":%d}}`, now+2*86_400))
	suite.Require().ErrorIs(err, types.ErrMaxAmpChangeAssertion)
	err = suite.stableUpdate(pair, fmt.Sprintf(`{"start_changing_amp":{"next_amp":200,"next_amp_time":%d}}`, now+3_600))
	suite.Require().ErrorIs(err, types.ErrMinAmpChangingTime)

	suite.Require().NoError(suite.stableUpdate(pair, fmt.Sprintf(`{"start_changing_amp":{"next_amp":200,"next_amp_time":%d}}`, now+2*86_400)))
	params := suite.stableParams(pair)
	suite.Require().True(params.IsRamping)
	suite.Require().Equal(math.LegacyNewDec(100), params.Amp)
	suite.Require().Equal(math.LegacyNewDec(200), params.FutureAmp)

	suite.nextBlock(24 * time.Hour)
	suite.Require().Equal(math.LegacyNewDec(150), suite.stableParams(pair).Amp)

	suite.Require().NoError(suite.stableUpdate(pair, `{"stop_changing_amp":{}}`))
	suite.nextBlock(12 * time.Hour)
	params = suite.stableParams(pair)
	suite.Require().False(params.IsRamping)
	suite.Require().Equal(math.LegacyNewDec(150), params.Amp)
}

func (suite *KeeperTestSuite) TestStableObservations() {
	pair := suite.stablePool()
	_, err := suite.h.Keeper.Observe(suite.ctx, pair, 0)
	suite.Require().ErrorIs(err, types.ErrObservationBufferIsEmpty)

	swap := func(offer types.Asset) {
		suite.Require().NoError(suite.h.Fund(suite.ctx, suite.bob, coins(offer)))
		_, err := suite.h.Keeper.Swap(suite.ctx, pair, types.MessageInfo{Sender: suite.bob, Funds: coins(offer)}, types.SwapMsg{
			OfferAsset: offer,
			MaxSpread:  decPtr("0.02"),
		})
		suite.Require().NoError(err)
	}
	swap(native(luna, 1_500_000_000))
	tradedAt := uint64(suite.h.Now().Unix())

	// trades of the current block stay in the precommit
	_, err = suite.h.Keeper.Observe(suite.ctx, pair, 0)
	suite.Require().ErrorIs(err, types.ErrObservationBufferIsEmpty)

	suite.nextBlock(time.Minute)
	swap(native(usd, 1_000_000))

	obs, err := suite.h.Keeper.Observe(suite.ctx, pair, 0)
	suite.Require().NoError(err)
	suite.Require().Equal(tradedAt+60, obs.Timestamp)
	// 1500 LUNA sold for 1492.406112 USD gross of commission
	suite.Require().True(obs.Price.GT(math.LegacyOneDec()), "price %s", obs.Price)
	suite.Require().True(obs.Price.LT(math.LegacyMustNewDecFromStr("1.01")), "price %s", obs.Price)
	suite.Require().Equal(obs.Price, obs.PriceSMA)

	at, err := suite.h.Keeper.Observe(suite.ctx, pair, 60)
	suite.Require().NoError(err)
	suite.Require().Equal(tradedAt, at.Timestamp)
	suite.Require().Equal(obs.Price, at.Price)

	_, err = suite.h.Keeper.Observe(suite.ctx, pair, 61)
	suite.Require().ErrorIs(err, types.ErrObservationTooOld)
}

func (suite *KeeperTestSuite) TestStableCumulativePrices() {
	pair := suite.stablePool()
	suite.nextBlock(time.Hour)

	res, err := suite.h.Keeper.CumulativePrices(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Len(res.CumulativePrices, 2)
	for _, p := range res.CumulativePrices {
		suite.Require().True(p.Value.IsPositive(), "%s -> %s", p.From, p.To)
	}
	// USD is scarcer, one LUNA buys less than one USD
	suite.Require().True(res.CumulativePrices[0].Value.LT(res.CumulativePrices[1].Value))
}
