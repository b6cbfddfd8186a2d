package keeper_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	keepertest "github.com/astroport-fi/astroport-core-sub001/testutil/keeper"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/pcl"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

const concentratedParams = `{
	"amp": "10",
	"gamma": "0.000145",
	"mid_fee": "0.0026",
	"out_fee": "0.0045",
	"fee_gamma": "0.00023",
	"repeg_profit_threshold": "0.000002",
	"min_price_scale_delta": "0.000146",
	"price_scale": "1",
	"ma_half_time": 600
}`

// concentratedPool creates a uluna/uusd concentrated pair holding 1_000 of each asset.
func (suite *KeeperTestSuite) concentratedPool() sdk.AccAddress {
	pair := keepertest.CreatePair(suite.T(), suite.h, suite.ctx, types.PairTypeConcentrated, []types.AssetInfo{luna, usd}, concentratedParams)
	keepertest.Provide(suite.T(), suite.h, suite.ctx, pair, suite.alice, native(luna, 1_000_000_000), native(usd, 1_000_000_000))
	return pair
}

func (suite *KeeperTestSuite) concentratedUpdate(pair sdk.AccAddress, params string) error {
	return suite.h.Keeper.UpdateConfig(suite.ctx, pair, types.MessageInfo{Sender: keepertest.FactoryOwner}, types.UpdateConfigMsg{Params: []byte(params)})
}

func (suite *KeeperTestSuite) concentratedSwap(pair sdk.AccAddress, offer types.Asset) types.SwapResponse {
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.bob, coins(offer)))
	resp, err := suite.h.Keeper.Swap(suite.ctx, pair, types.MessageInfo{Sender: suite.bob, Funds: coins(offer)}, types.SwapMsg{
		OfferAsset: offer,
		MaxSpread:  decPtr("0.05"),
	})
	suite.Require().NoError(err)
	return resp
}

func (suite *KeeperTestSuite) TestConcentratedInstantiateValidation() {
	for name, params := range map[string]string{
		"missing":        "",
		"amp too low":    `{"amp":"0.5","gamma":"0.000145","mid_fee":"0.0026","out_fee":"0.0045","fee_gamma":"0.00023","repeg_profit_threshold":"0","min_price_scale_delta":"0","price_scale":"1","ma_half_time":600}`,
		"mid over out":   `{"amp":"10","gamma":"0.000145","mid_fee":"0.005","out_fee":"0.0045","fee_gamma":"0.00023","repeg_profit_threshold":"0","min_price_scale_delta":"0","price_scale":"1","ma_half_time":600}`,
		"zero half time": `{"amp":"10","gamma":"0.000145","mid_fee":"0.0026","out_fee":"0.0045","fee_gamma":"0.00023","repeg_profit_threshold":"0","min_price_scale_delta":"0","price_scale":"1","ma_half_time":0}`,
	} {
		suite.Run(name, func() {
			msg := types.InstantiateMsg{
				PairType:    types.PairTypeConcentrated,
				AssetInfos:  []types.AssetInfo{luna, usd},
				FactoryAddr: keepertest.FactoryOwner.String(),
			}
			if params != "" {
				msg.InitParams = []byte(params)
			}
			_, err := suite.h.Keeper.Instantiate(suite.ctx, types.MessageInfo{Sender: keepertest.FactoryOwner}, msg)
			suite.Require().Error(err)
		})
	}
}

func (suite *KeeperTestSuite) TestConcentratedProvide() {
	pair := suite.concentratedPool()
	denom := types.LPDenom(pair)

	// xcp of a balanced 1_000/1_000 pool is 1_000 LP, less the locked minimum
	suite.Require().Equal(math.NewInt(999_999_000), suite.balance(suite.alice, denom))
	pool, err := suite.h.Keeper.Pool(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(1_000_000_000), pool.TotalShare)

	share := keepertest.Provide(suite.T(), suite.h, suite.ctx, pair, suite.bob, native(luna, 100_000_000), native(usd, 100_000_000))
	suite.Require().True(share.IsPositive())
	suite.Require().True(share.LTE(math.NewInt(100_000_000)), "share %s", share)

	// a one-sided deposit is priced as a trade and must respect the slippage tolerance
	one := native(usd, 500_000_000)
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.bob, coins(one)))
	_, err = suite.h.Keeper.ProvideLiquidity(suite.ctx, pair, types.MessageInfo{Sender: suite.bob, Funds: coins(one)}, types.ProvideLiquidityMsg{
		Assets:            []types.Asset{one},
		SlippageTolerance: decPtr("0.0001"),
	})
	suite.Require().ErrorIs(err, types.ErrMaxSlippageAssertion)
	share, err = suite.h.Keeper.ProvideLiquidity(suite.ctx, pair, types.MessageInfo{Sender: suite.bob, Funds: coins(one)}, types.ProvideLiquidityMsg{
		Assets:            []types.Asset{one},
		SlippageTolerance: decPtr("0.3"),
	})
	suite.Require().NoError(err)
	suite.Require().True(share.IsPositive())
}

func (suite *KeeperTestSuite) TestConcentratedSwap() {
	pair := suite.concentratedPool()
	offer := native(luna, 10_000_000)

	sim, err := suite.h.Keeper.Simulation(suite.ctx, pair, types.SimulationQuery{OfferAsset: offer})
	suite.Require().NoError(err)
	suite.Require().True(sim.ReturnAmount.LT(offer.Amount))
	suite.Require().True(sim.ReturnAmount.GT(math.NewInt(9_800_000)), "return %s", sim.ReturnAmount)
	suite.Require().True(sim.CommissionAmount.IsPositive())

	resp := suite.concentratedSwap(pair, offer)
	suite.Require().Equal(sim.ReturnAmount, resp.ReturnAmount)
	suite.Require().True(resp.MakerFeeAmount.IsZero())
	suite.Require().Equal(resp.ReturnAmount, suite.balance(suite.bob, "uusd"))
	suite.Require().Equal(math.NewInt(1_010_000_000), suite.balance(pair, "uluna"))
	suite.Require().Equal(math.NewInt(1_000_000_000).Sub(resp.ReturnAmount), suite.balance(pair, "uusd"))

	rev, err := suite.h.Keeper.ReverseSimulation(suite.ctx, pair, types.ReverseSimulationQuery{AskAsset: native(luna, 5_000_000)})
	suite.Require().NoError(err)
	suite.Require().True(rev.OfferAmount.IsPositive())
	suite.Require().True(rev.CommissionAmount.IsPositive())

	d, err := suite.h.Keeper.ComputeD(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().True(d.GT(math.LegacyNewDec(2_000)), "D %s", d)
}

func (suite *KeeperTestSuite) TestConcentratedWithdraw() {
	pair := suite.concentratedPool()
	denom := types.LPDenom(pair)
	half := sdk.NewCoins(sdk.NewInt64Coin(denom, 500_000_000))

	_, err := suite.h.Keeper.WithdrawLiquidity(suite.ctx, pair, types.MessageInfo{Sender: suite.alice, Funds: half}, types.WithdrawLiquidityMsg{
		Assets: []types.Asset{native(luna, 1_000)},
	})
	suite.Require().ErrorIs(err, types.ErrImbalancedWithdraw)

	refunds, err := suite.h.Keeper.WithdrawLiquidity(suite.ctx, pair, types.MessageInfo{Sender: suite.alice, Funds: half}, types.WithdrawLiquidityMsg{})
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(500_000_000), refunds[0].Amount)
	suite.Require().Equal(math.NewInt(500_000_000), refunds[1].Amount)
	suite.Require().Equal(math.NewInt(499_999_000), suite.balance(suite.alice, denom))

	// the pool keeps trading after a withdrawal
	resp := suite.concentratedSwap(pair, native(usd, 1_000_000))
	suite.Require().True(resp.ReturnAmount.IsPositive())
}

func (suite *KeeperTestSuite) TestConcentratedUnsupportedQueries() {
	pair := suite.concentratedPool()
	_, err := suite.h.Keeper.CumulativePrices(suite.ctx, pair)
	suite.Require().ErrorIs(err, types.ErrNotSupported)
}

func (suite *KeeperTestSuite) TestConcentratedObservations() {
	pair := suite.concentratedPool()
	suite.concentratedSwap(pair, native(luna, 10_000_000))
	suite.nextBlock(10 * time.Second)
	suite.concentratedSwap(pair, native(usd, 1_000_000))

	obs, err := suite.h.Keeper.Observe(suite.ctx, pair, 10)
	suite.Require().NoError(err)
	// 10 LUNA sold for slightly less than 10 USD
	suite.Require().True(obs.Price.GT(math.LegacyOneDec()), "price %s", obs.Price)
	suite.Require().True(obs.Price.LT(math.LegacyMustNewDecFromStr("1.01")), "price %s", obs.Price)
}

func (suite *KeeperTestSuite) TestConcentratedConfig() {
	pair := suite.concentratedPool()
	cfg, err := suite.h.Keeper.Config(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Equal(keepertest.FactoryOwner.String(), cfg.Owner)

	var params types.ConcentratedParamsResponse
	suite.Require().NoError(json.Unmarshal(cfg.Params, &params))
	suite.Require().True(params.Amp.Equal(math.LegacyNewDec(10)))
	suite.Require().True(params.Gamma.Equal(math.LegacyMustNewDecFromStr("0.000145")))
	suite.Require().False(params.Orderbook.Enabled)
	suite.Require().Contains(string(params.PriceState), "price_scale")

	suite.Require().NoError(suite.concentratedUpdate(pair, `{"update":{"mid_fee":"0.003"}}`))
	cfg, err = suite.h.Keeper.Config(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().NoError(json.Unmarshal(cfg.Params, &params))
	suite.Require().Contains(string(params.Params), `"mid_fee":"0.003000000000000000"`)

	err = suite.concentratedUpdate(pair, `{"update":{"mid_fee":"0.01"}}`)
	suite.Require().Error(err)

	future := uint64(suite.h.Now().Unix()) + 2*86_400
	err = suite.concentratedUpdate(pair, fmt.Sprintf(`{"promote":{"next_amp":"20","next_gamma":"0.000145","future_time":%d}}`, future))
	suite.Require().ErrorIs(err, types.ErrMinAmpChangingTime)

	suite.nextBlock(24 * time.Hour)
	suite.Require().NoError(suite.concentratedUpdate(pair, fmt.Sprintf(`{"promote":{"next_amp":"20","next_gamma":"0.000145","future_time":%d}}`, future+86_400)))
	suite.Require().NoError(suite.concentratedUpdate(pair, `{"stop_changing_amp_gamma":{}}`))
}

func (suite *KeeperTestSuite) TestConcentratedFeeShare() {
	pair := suite.concentratedPool()
	recipient := keepertest.TestAddr("fee_share")
	suite.Require().NoError(suite.concentratedUpdate(pair, `{"enable_fee_share":{"fee_share_bps":1000,"fee_share_address":"`+recipient.String()+`"}}`))

	resp := suite.concentratedSwap(pair, native(luna, 10_000_000))
	suite.Require().True(resp.FeeShareAmount.IsPositive())
	suite.Require().True(resp.FeeShareAmount.LTE(resp.CommissionAmount))
	suite.Require().Equal(resp.FeeShareAmount, suite.balance(recipient, "uusd"))
	suite.Require().Equal(math.NewInt(1_000_000_000).Sub(resp.ReturnAmount).Sub(resp.FeeShareAmount), suite.balance(pair, "uusd"))
}

func (suite *KeeperTestSuite) TestConcentratedOrderbook() {
	pair := suite.concentratedPool()
	suite.concentratedSwap(pair, native(luna, 1_000_000))
	suite.Require().Zero(suite.h.Orderbook.Reconciles)
	suite.Require().Empty(suite.h.Orderbook.Placed)

	err := suite.concentratedUpdate(pair, `{"update_orderbook_params":{"enabled":true,"orders_number":0,"min_trades_to_avg":1}}`)
	suite.Require().ErrorIs(err, types.ErrInvalidOrderbookParams)
	suite.Require().NoError(suite.concentratedUpdate(pair, `{"update_orderbook_params":{"enabled":true,"orders_number":5,"min_trades_to_avg":1}}`))

	suite.concentratedSwap(pair, native(luna, 1_000_000))
	suite.Require().Equal(1, suite.h.Orderbook.Reconciles)
	suite.Require().Len(suite.h.Orderbook.Placed, 1)
	placed := suite.h.Orderbook.Placed[0]
	suite.Require().Equal(pair, placed.Pair)
	suite.Require().Equal(uint8(5), placed.Params.OrdersNumber)
	suite.Require().Equal(suite.balance(pair, "uluna"), placed.Reserves[0])
	suite.Require().True(hasEvent(suite.ctx, types.EventTypeOrderbookReconcile))
}

func (suite *KeeperTestSuite) concentratedTrySwap(pair sdk.AccAddress, offer types.Asset) (types.SwapResponse, error) {
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.bob, coins(offer)))
	return suite.h.Keeper.Swap(suite.ctx, pair, types.MessageInfo{Sender: suite.bob, Funds: coins(offer)}, types.SwapMsg{
		OfferAsset: offer,
		MaxSpread:  decPtr("0.5"),
	})
}

func (suite *KeeperTestSuite) concentratedPriceState(pair sdk.AccAddress) pcl.PriceState {
	cfg, err := suite.h.Keeper.Config(suite.ctx, pair)
	suite.Require().NoError(err)
	var params types.ConcentratedParamsResponse
	suite.Require().NoError(json.Unmarshal(cfg.Params, &params))
	var ps pcl.PriceState
	suite.Require().NoError(json.Unmarshal(params.PriceState, &ps))
	return ps
}

func (suite *KeeperTestSuite) TestConcentratedRepeg() {
	params := strings.Replace(concentratedParams, `"price_scale": "1"`, `"price_scale": "2"`, 1)
	pair := keepertest.CreatePair(suite.T(), suite.h, suite.ctx, types.PairTypeConcentrated, []types.AssetInfo{luna, usd}, params)
	// one USD is worth two LUNA
	keepertest.Provide(suite.T(), suite.h, suite.ctx, pair, suite.alice, native(luna, 2_000_000_000), native(usd, 1_000_000_000))

	two := math.LegacyNewDec(2)
	ps := suite.concentratedPriceState(pair)
	suite.Require().True(ps.PriceScale.Equal(two), "price scale %s", ps.PriceScale)
	suite.Require().True(ps.XcpProfit.Equal(math.LegacyOneDec()))
	suite.Require().True(ps.XcpProfitReal.Equal(math.LegacyOneDec()))

	// USD keeps being sold so the oracle drifts below the price scale
	scale := ps.PriceScale
	for i := 0; i < 4; i++ {
		if i > 0 {
			suite.nextBlock(10 * time.Minute)
		}
		_, err := suite.concentratedTrySwap(pair, native(usd, 20_000_000))
		suite.Require().NoError(err, "swap %d", i)
		ps = suite.concentratedPriceState(pair)
		suite.Require().True(ps.PriceScale.LTE(scale), "swap %d: price scale %s after %s", i, ps.PriceScale, scale)
		scale = ps.PriceScale
	}
	suite.Require().True(scale.LT(two), "price scale %s", scale)

	suite.nextBlock(10 * time.Minute)
	_, err := suite.concentratedTrySwap(pair, native(luna, 40_000_000))
	suite.Require().NoError(err)
	suite.Require().True(hasEvent(suite.ctx, types.EventTypeRepeg))

	ps = suite.concentratedPriceState(pair)
	suite.Require().True(ps.PriceScale.LT(scale), "price scale %s after %s", ps.PriceScale, scale)
	suite.Require().True(ps.PriceScale.GT(ps.OraclePrice), "price scale %s oracle %s", ps.PriceScale, ps.OraclePrice)
	suite.Require().True(ps.XcpProfit.GT(math.LegacyOneDec()), "xcp_profit %s", ps.XcpProfit)
	// the pool keeps more than half of its profit after moving
	half := ps.XcpProfit.Add(math.LegacyOneDec()).QuoInt64(2)
	suite.Require().True(ps.XcpProfitReal.GT(half), "xcp_profit_real %s xcp_profit %s", ps.XcpProfitReal, ps.XcpProfit)
}

func (suite *KeeperTestSuite) lossGuardPool(allowedDrop, lossesThreshold string) sdk.AccAddress {
	params := strings.Replace(concentratedParams, `"ma_half_time": 600`,
		fmt.Sprintf(`"ma_half_time": 600, "allowed_xcp_profit_drop": %q, "xcp_profit_losses_threshold": %q`, allowedDrop, lossesThreshold), 1)
	pair := keepertest.CreatePair(suite.T(), suite.h, suite.ctx, types.PairTypeConcentrated, []types.AssetInfo{luna, usd}, params)
	keepertest.Provide(suite.T(), suite.h, suite.ctx, pair, suite.alice, native(luna, 1_000_000_000), native(usd, 1_000_000_000))
	return pair
}

// drain moves LUNA out of the pair without trading, as a loss of reserves would.
func (suite *KeeperTestSuite) drain(pair sdk.AccAddress, amount int64) {
	suite.Require().NoError(suite.h.Bank.SendCoins(suite.ctx, pair, keepertest.TestAddr("sink"), coins(native(luna, amount))))
}

func (suite *KeeperTestSuite) TestConcentratedLossGuardDrop() {
	pair := suite.lossGuardPool("0.000000000001", "0.00000000001")

	// fees only ever raise the value of an LP unit
	_, err := suite.concentratedTrySwap(pair, native(usd, 1_000_000))
	suite.Require().NoError(err)
	before := suite.concentratedPriceState(pair)

	suite.drain(pair, 1_000_000)
	_, err = suite.concentratedTrySwap(pair, native(usd, 1_000_000))
	suite.Require().ErrorIs(err, types.ErrXcpProfitDropped)
	suite.Require().Equal(before, suite.concentratedPriceState(pair))

	// a donation restores the reserves and unblocks trading
	suite.Require().NoError(suite.h.Fund(suite.ctx, pair, coins(native(luna, 2_000_000))))
	resp, err := suite.concentratedTrySwap(pair, native(usd, 1_000_000))
	suite.Require().NoError(err)
	suite.Require().True(resp.ReturnAmount.IsPositive())
	after := suite.concentratedPriceState(pair)
	suite.Require().True(after.XcpProfitReal.GT(before.XcpProfitReal))
	suite.Require().True(after.XcpProfitLosses.IsZero())
}

func (suite *KeeperTestSuite) TestConcentratedLossGuardLimit() {
	pair := suite.lossGuardPool("0.001", "0.0008")

	// a single loss below the allowed drop is booked
	suite.drain(pair, 1_000_000)
	_, err := suite.concentratedTrySwap(pair, native(usd, 1_000_000))
	suite.Require().NoError(err)
	booked := suite.concentratedPriceState(pair)
	suite.Require().True(booked.XcpProfitLosses.IsPositive())
	suite.Require().True(booked.XcpProfitLosses.LT(math.LegacyMustNewDecFromStr("0.0008")), "losses %s", booked.XcpProfitLosses)

	// the second one pushes the sum past the threshold
	suite.drain(pair, 1_000_000)
	_, err = suite.concentratedTrySwap(pair, native(usd, 1_000_000))
	suite.Require().ErrorIs(err, types.ErrLossLimitReached)
	suite.Require().Equal(booked, suite.concentratedPriceState(pair))

	suite.Require().NoError(suite.h.Fund(suite.ctx, pair, coins(native(luna, 3_000_000))))
	_, err = suite.concentratedTrySwap(pair, native(usd, 1_000_000))
	suite.Require().NoError(err)
	recovered := suite.concentratedPriceState(pair)
	suite.Require().True(recovered.XcpProfitLosses.IsZero(), "losses %s", recovered.XcpProfitLosses)
	suite.Require().True(recovered.XcpProfitReal.GT(booked.XcpProfitReal))
}
