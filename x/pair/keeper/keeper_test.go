package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/astroport-fi/astroport-core-sub001/testutil/keeper"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/sandbox"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

var (
	luna = types.NativeAsset("uluna")
	usd  = types.NativeAsset("uusd")
)

func native(info types.AssetInfo, amount int64) types.Asset {
	return types.NewAsset(info, math.NewInt(amount))
}

func coins(assets ...types.Asset) sdk.Coins {
	out := sdk.NewCoins()
	for _, a := range assets {
		c, err := a.Coin()
		if err != nil {
			panic(err)
		}
		out = out.Add(c)
	}
	return out
}

func decPtr(s string) *math.LegacyDec {
	d := math.LegacyMustNewDecFromStr(s)
	return &d
}

func hasEvent(ctx sdk.Context, eventType string) bool {
	for _, ev := range ctx.EventManager().Events() {
		if ev.Type == eventType {
			return true
		}
	}
	return false
}

type KeeperTestSuite struct {
	suite.Suite
	h     *sandbox.Host
	ctx   sdk.Context
	alice sdk.AccAddress
	bob   sdk.AccAddress
}

func (suite *KeeperTestSuite) SetupTest() {
	suite.h, suite.ctx = keepertest.PairKeeper(suite.T())
	suite.alice = keepertest.TestAddr("alice")
	suite.bob = keepertest.TestAddr("bob")
}

func TestKeeperTestSuite(t *testing.T) {
	suite.Run(t, new(KeeperTestSuite))
}

func (suite *KeeperTestSuite) nextBlock(dt time.Duration) {
	suite.h.AdvanceBlock(dt)
	suite.ctx = suite.h.Ctx()
}

func (suite *KeeperTestSuite) balance(addr sdk.AccAddress, denom string) math.Int {
	return suite.h.Bank.GetBalance(suite.ctx, addr, denom).Amount
}

// xykPool creates a uluna/uusd pair holding 30_000 LUNA and 20_000 USD.
func (suite *KeeperTestSuite) xykPool(initParams string) sdk.AccAddress {
	pair := keepertest.CreatePair(suite.T(), suite.h, suite.ctx, types.PairTypeXYK, []types.AssetInfo{usd, luna}, initParams)
	keepertest.Provide(suite.T(), suite.h, suite.ctx, pair, suite.alice, native(luna, 30_000_000_000), native(usd, 20_000_000_000))
	return pair
}

func (suite *KeeperTestSuite) TestInstantiate() {
	tests := []struct {
		name     string
		pairType types.PairType
		infos    []types.AssetInfo
		params   string
		err      error
	}{
		{"xyk", types.PairTypeXYK, []types.AssetInfo{luna, usd}, "", nil},
		{"stable", types.PairTypeStable, []types.AssetInfo{luna, usd}, `{"amp":100}`, nil},
		{"doubling assets", types.PairTypeXYK, []types.AssetInfo{luna, luna}, "", types.ErrDoublingAssets},
		{"unregistered denom", types.PairTypeXYK, []types.AssetInfo{luna, types.NativeAsset("unknown")}, "", types.ErrInvalidAsset},
		{"stable without params", types.PairTypeStable, []types.AssetInfo{luna, usd}, "", types.ErrInvalidParams},
		{"stable amp out of range", types.PairTypeStable, []types.AssetInfo{luna, usd}, `{"amp":0}`, types.ErrIncorrectAmp},
		{"unknown type", types.PairType("weighted"), []types.AssetInfo{luna, usd}, "", types.ErrInvalidParams},
	}
	for _, tc := range tests {
		suite.Run(tc.name, func() {
			msg := types.InstantiateMsg{PairType: tc.pairType, AssetInfos: tc.infos, FactoryAddr: keepertest.FactoryOwner.String()}
			if tc.params != "" {
				msg.InitParams = []byte(tc.params)
			}
			pair, err := suite.h.Keeper.Instantiate(suite.ctx, types.MessageInfo{Sender: keepertest.FactoryOwner}, msg)
			if tc.err != nil {
				suite.Require().ErrorIs(err, tc.err)
				return
			}
			suite.Require().NoError(err)
			info, err := suite.h.Keeper.Pair(suite.ctx, pair)
			suite.Require().NoError(err)
			suite.Require().Equal([2]types.AssetInfo{luna, usd}, info.AssetInfos)
			suite.Require().Equal(types.LPDenom(pair), info.LiquidityToken)
			found, ok := suite.h.Keeper.PairByLPDenom(suite.ctx, info.LiquidityToken)
			suite.Require().True(ok)
			suite.Require().Equal(pair, found)
		})
	}
	suite.Require().True(hasEvent(suite.ctx, types.EventTypeRegisterLPToken))
}

func (suite *KeeperTestSuite) TestInstantiateAssignsDistinctAddresses() {
	a := keepertest.CreatePair(suite.T(), suite.h, suite.ctx, types.PairTypeXYK, []types.AssetInfo{luna, usd}, "")
	b := keepertest.CreatePair(suite.T(), suite.h, suite.ctx, types.PairTypeXYK, []types.AssetInfo{luna, usd}, "")
	suite.Require().NotEqual(a, b)
	pairs, err := suite.h.Keeper.GetAllPairs(suite.ctx)
	suite.Require().NoError(err)
	suite.Require().Len(pairs, 2)
}

func (suite *KeeperTestSuite) TestXYKInitialProvide() {
	pair := suite.xykPool("")
	info, err := suite.h.Keeper.Pair(suite.ctx, pair)
	suite.Require().NoError(err)
	denom := info.LiquidityToken

	// sqrt(30e9 * 20e9) = 24_494_897_427, of which 1_000 stays locked in the pair
	suite.Require().Equal(math.NewInt(24_494_896_427), suite.balance(suite.alice, denom))
	suite.Require().Equal(math.NewInt(1_000), suite.balance(pair, denom))

	pool, err := suite.h.Keeper.Pool(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(24_494_897_427), pool.TotalShare)
	suite.Require().Equal(math.NewInt(30_000_000_000), pool.Assets[0].Amount)
	suite.Require().Equal(math.NewInt(20_000_000_000), pool.Assets[1].Amount)
	suite.Require().True(hasEvent(suite.ctx, types.EventTypeProvideLiquidity))
}

func (suite *KeeperTestSuite) TestXYKProvideChecks() {
	pair := keepertest.CreatePair(suite.T(), suite.h, suite.ctx, types.PairTypeXYK, []types.AssetInfo{luna, usd}, "")
	provide := func(sender sdk.AccAddress, funds sdk.Coins, msg types.ProvideLiquidityMsg) (math.Int, error) {
		suite.Require().NoError(suite.h.Fund(suite.ctx, sender, funds))
		return suite.h.Keeper.ProvideLiquidity(suite.ctx, pair, types.MessageInfo{Sender: sender, Funds: funds}, msg)
	}

	one := native(luna, 1_000_000)
	_, err := provide(suite.alice, coins(one), types.ProvideLiquidityMsg{Assets: []types.Asset{one}})
	suite.Require().ErrorIs(err, types.ErrNotEnoughFirstDeposit)

	deposit := []types.Asset{native(luna, 30_000_000_000), native(usd, 20_000_000_000)}
	_, err = provide(suite.alice, coins(deposit[0]), types.ProvideLiquidityMsg{Assets: deposit})
	suite.Require().ErrorIs(err, types.ErrFundsMismatch)

	extra := coins(deposit...).Add(sdk.NewInt64Coin("uatom", 1))
	_, err = provide(suite.alice, extra, types.ProvideLiquidityMsg{Assets: deposit})
	suite.Require().ErrorIs(err, types.ErrFundsMismatch)

	tiny := []types.Asset{native(luna, 1_000), native(usd, 1_000)}
	_, err = provide(suite.alice, coins(tiny...), types.ProvideLiquidityMsg{Assets: tiny})
	suite.Require().ErrorIs(err, types.ErrMinimumLiquidityAmount)

	share, err := provide(suite.alice, coins(deposit...), types.ProvideLiquidityMsg{Assets: deposit})
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(24_494_896_427), share)

	// a tenth of the pool at the pool ratio mints a tenth of the supply
	tenth := []types.Asset{native(luna, 3_000_000_000), native(usd, 2_000_000_000)}
	_, err = provide(suite.bob, coins(tenth...), types.ProvideLiquidityMsg{Assets: tenth, MinLPToReceive: func() *math.Int { v := math.NewInt(2_449_489_743); return &v }()})
	suite.Require().ErrorIs(err, types.ErrProvideSlippage)
	share, err = provide(suite.bob, coins(tenth...), types.ProvideLiquidityMsg{Assets: tenth, Receiver: suite.alice.String()})
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(2_449_489_742), share)
	suite.Require().Equal(math.NewInt(24_494_896_427+2_449_489_742), suite.balance(suite.alice, types.LPDenom(pair)))

	skewed := []types.Asset{native(luna, 3_000_000_000), native(usd, 3_000_000_000)}
	_, err = provide(suite.bob, coins(skewed...), types.ProvideLiquidityMsg{Assets: skewed})
	suite.Require().ErrorIs(err, types.ErrMaxSlippageAssertion)
	_, err = provide(suite.bob, coins(skewed...), types.ProvideLiquidityMsg{Assets: skewed, SlippageTolerance: decPtr("0.6")})
	suite.Require().ErrorIs(err, types.ErrAllowedSpreadAssertion)

	// failed provides leave the pair untouched
	pool, err := suite.h.Keeper.Pool(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(33_000_000_000), pool.Assets[0].Amount)
	suite.Require().Equal(math.NewInt(22_000_000_000), pool.Assets[1].Amount)
}

func (suite *KeeperTestSuite) TestXYKSwap() {
	pair := suite.xykPool("")
	offer := native(luna, 1_500_000_000)
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.bob, coins(offer)))
	info := types.MessageInfo{Sender: suite.bob, Funds: coins(offer)}

	sim, err := suite.h.Keeper.Simulation(suite.ctx, pair, types.SimulationQuery{OfferAsset: offer})
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(949_523_810), sim.ReturnAmount)
	suite.Require().Equal(math.NewInt(47_619_047), sim.SpreadAmount)
	suite.Require().Equal(math.NewInt(2_857_142), sim.CommissionAmount)

	// the default 0.5% max spread rejects a 5% price impact and reverts the credited funds
	_, err = suite.h.Keeper.Swap(suite.ctx, pair, info, types.SwapMsg{OfferAsset: offer})
	suite.Require().ErrorIs(err, types.ErrMaxSpreadAssertion)
	suite.Require().Equal(offer.Amount, suite.balance(suite.bob, "uluna"))

	_, err = suite.h.Keeper.Swap(suite.ctx, pair, info, types.SwapMsg{OfferAsset: offer, AskAssetInfo: &luna, MaxSpread: decPtr("0.1")})
	suite.Require().ErrorIs(err, types.ErrAssetMismatch)

	resp, err := suite.h.Keeper.Swap(suite.ctx, pair, info, types.SwapMsg{OfferAsset: offer, AskAssetInfo: &usd, MaxSpread: decPtr("0.1")})
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(949_523_810), resp.ReturnAmount)
	suite.Require().Equal(math.NewInt(2_857_142), resp.CommissionAmount)
	suite.Require().Equal(math.NewInt(952_285), resp.MakerFeeAmount)
	suite.Require().True(resp.FeeShareAmount.IsZero())

	suite.Require().True(suite.balance(suite.bob, "uluna").IsZero())
	suite.Require().Equal(math.NewInt(949_523_810), suite.balance(suite.bob, "uusd"))
	suite.Require().Equal(math.NewInt(952_285), suite.balance(keepertest.FeeAddress, "uusd"))
	suite.Require().Equal(math.NewInt(31_500_000_000), suite.balance(pair, "uluna"))
	suite.Require().Equal(math.NewInt(20_000_000_000-949_523_810-952_285), suite.balance(pair, "uusd"))
	suite.Require().True(hasEvent(suite.ctx, types.EventTypeSwap))
}

func (suite *KeeperTestSuite) TestSwapRejects() {
	pair := suite.xykPool("")
	offer := native(luna, 1_000_000)
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.bob, coins(offer)))

	_, err := suite.h.Keeper.Swap(suite.ctx, pair, types.MessageInfo{Sender: suite.bob}, types.SwapMsg{OfferAsset: offer})
	suite.Require().ErrorIs(err, types.ErrFundsMismatch)

	zero := native(luna, 0)
	_, err = suite.h.Keeper.Swap(suite.ctx, pair, types.MessageInfo{Sender: suite.bob}, types.SwapMsg{OfferAsset: zero})
	suite.Require().ErrorIs(err, types.ErrSwapZeroAmount)

	token := types.NewAsset(types.TokenAsset(keepertest.TestAddr("token").String()), math.NewInt(1))
	_, err = suite.h.Keeper.Swap(suite.ctx, pair, types.MessageInfo{Sender: suite.bob}, types.SwapMsg{OfferAsset: token})
	suite.Require().ErrorIs(err, types.ErrCw20DirectSwap)

	atom := native(types.NativeAsset("uatom"), 1_000)
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.bob, coins(atom)))
	_, err = suite.h.Keeper.Swap(suite.ctx, pair, types.MessageInfo{Sender: suite.bob, Funds: coins(atom)}, types.SwapMsg{OfferAsset: atom})
	suite.Require().ErrorIs(err, types.ErrAssetMismatch)

	// belief price of 1 USD per LUNA expects 1_000_000 back, the pool pays about 666_000
	_, err = suite.h.Keeper.Swap(suite.ctx, pair, types.MessageInfo{Sender: suite.bob, Funds: coins(offer)}, types.SwapMsg{
		OfferAsset:  offer,
		BeliefPrice: decPtr("1"),
		MaxSpread:   decPtr("0.01"),
	})
	suite.Require().ErrorIs(err, types.ErrMaxSpreadAssertion)
	_, err = suite.h.Keeper.Swap(suite.ctx, pair, types.MessageInfo{Sender: suite.bob, Funds: coins(offer)}, types.SwapMsg{
		OfferAsset:  offer,
		BeliefPrice: decPtr("1.5"),
		MaxSpread:   decPtr("0.01"),
		To:          suite.alice.String(),
	})
	suite.Require().NoError(err)
	suite.Require().True(suite.balance(suite.alice, "uusd").IsPositive())
}

func (suite *KeeperTestSuite) TestSwapMalformedFeeAddress() {
	pair := suite.xykPool("")
	suite.h.Factory.SetFees(types.PairTypeXYK, types.FeeInfo{
		FeeAddress:   "bad",
		TotalFeeRate: math.LegacyNewDecWithPrec(3, 3),
		MakerFeeRate: math.LegacyNewDecWithPrec(3333, 4),
	})
	offer := native(luna, 1_000_000)
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.bob, coins(offer)))
	info := types.MessageInfo{Sender: suite.bob, Funds: coins(offer)}

	var err error
	suite.Require().NotPanics(func() {
		_, err = suite.h.Keeper.Swap(suite.ctx, pair, info, types.SwapMsg{OfferAsset: offer, MaxSpread: decPtr("0.1")})
	})
	suite.Require().ErrorIs(err, types.ErrInvalidAddress)
	suite.Require().Equal(offer.Amount, suite.balance(suite.bob, "uluna"))
	suite.Require().Equal(math.NewInt(30_000_000_000), suite.balance(pair, "uluna"))

	suite.Require().NotPanics(func() {
		_, err = suite.h.Keeper.Swap(suite.ctx, pair, info, types.SwapMsg{OfferAsset: offer, MaxSpread: decPtr("0.1"), To: "nobody"})
	})
	suite.Require().ErrorIs(err, types.ErrInvalidAddress)
}

func (suite *KeeperTestSuite) TestReverseSimulation() {
	pair := suite.xykPool("")
	ask := native(usd, 1_000_000)
	rev, err := suite.h.Keeper.ReverseSimulation(suite.ctx, pair, types.ReverseSimulationQuery{AskAsset: ask, OfferAssetInfo: &luna})
	suite.Require().NoError(err)

	sim, err := suite.h.Keeper.Simulation(suite.ctx, pair, types.SimulationQuery{OfferAsset: types.NewAsset(luna, rev.OfferAmount)})
	suite.Require().NoError(err)
	suite.Require().True(sim.ReturnAmount.GTE(ask.Amount.SubRaw(1)), "got %s", sim.ReturnAmount)

	_, err = suite.h.Keeper.ReverseSimulation(suite.ctx, pair, types.ReverseSimulationQuery{AskAsset: native(usd, 20_000_000_000)})
	suite.Require().ErrorIs(err, types.ErrNotEnoughLiquidity)
}

func (suite *KeeperTestSuite) TestWithdrawLiquidity() {
	pair := suite.xykPool("")
	denom := types.LPDenom(pair)
	burn := sdk.NewCoins(sdk.NewInt64Coin(denom, 12_247_448_213))

	_, err := suite.h.Keeper.WithdrawLiquidity(suite.ctx, pair, types.MessageInfo{Sender: suite.alice, Funds: coins(native(luna, 1))}, types.WithdrawLiquidityMsg{})
	suite.Require().ErrorIs(err, types.ErrWrongLPToken)

	_, err = suite.h.Keeper.WithdrawLiquidity(suite.ctx, pair, types.MessageInfo{Sender: suite.alice, Funds: burn}, types.WithdrawLiquidityMsg{
		Assets: []types.Asset{native(luna, 1_000)},
	})
	suite.Require().ErrorIs(err, types.ErrImbalancedWithdraw)

	_, err = suite.h.Keeper.WithdrawLiquidity(suite.ctx, pair, types.MessageInfo{Sender: suite.alice, Funds: burn}, types.WithdrawLiquidityMsg{
		MinAssetsToReceive: []types.Asset{native(luna, 15_000_000_000)},
	})
	suite.Require().ErrorIs(err, types.ErrWithdrawSlippage)

	share, err := suite.h.Keeper.Share(suite.ctx, pair, burn[0].Amount)
	suite.Require().NoError(err)

	refunds, err := suite.h.Keeper.WithdrawLiquidity(suite.ctx, pair, types.MessageInfo{Sender: suite.alice, Funds: burn}, types.WithdrawLiquidityMsg{
		MinAssetsToReceive: []types.Asset{native(luna, 14_999_999_387)},
	})
	suite.Require().NoError(err)
	suite.Require().Equal(share, refunds)
	suite.Require().Equal(math.NewInt(14_999_999_387), refunds[0].Amount)
	suite.Require().Equal(math.NewInt(9_999_999_591), refunds[1].Amount)
	suite.Require().Equal(refunds[0].Amount, suite.balance(suite.alice, "uluna"))

	pool, err := suite.h.Keeper.Pool(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(12_247_449_214), pool.TotalShare)
	suite.Require().True(hasEvent(suite.ctx, types.EventTypeWithdrawLiquidity))
}

func (suite *KeeperTestSuite) TestAutoStake() {
	pair := keepertest.CreatePair(suite.T(), suite.h, suite.ctx, types.PairTypeXYK, []types.AssetInfo{luna, usd}, "")
	deposit := []types.Asset{native(luna, 30_000_000_000), native(usd, 20_000_000_000)}
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.alice, coins(deposit...)))
	info := types.MessageInfo{Sender: suite.alice, Funds: coins(deposit...)}

	_, err := suite.h.Keeper.ProvideLiquidity(suite.ctx, pair, info, types.ProvideLiquidityMsg{Assets: deposit, AutoStake: true})
	suite.Require().ErrorIs(err, types.ErrInvalidParams)

	incentives := keepertest.TestAddr("incentives")
	suite.h.Factory.Incentives = incentives
	share, err := suite.h.Keeper.ProvideLiquidity(suite.ctx, pair, info, types.ProvideLiquidityMsg{Assets: deposit, AutoStake: true})
	suite.Require().NoError(err)

	denom := types.LPDenom(pair)
	suite.Require().True(suite.balance(suite.alice, denom).IsZero())
	suite.Require().Equal(share, suite.balance(incentives, denom))
	suite.Require().Equal(share, suite.h.Incentives.Staked(denom, suite.alice))
	suite.Require().True(hasEvent(suite.ctx, types.EventTypeAutoStake))
}

func (suite *KeeperTestSuite) TestFeeShare() {
	pair := suite.xykPool("")
	recipient := keepertest.TestAddr("fee_share")
	enable := types.UpdateConfigMsg{Params: []byte(`{"enable_fee_share":{"fee_share_bps":250,"fee_share_address":"` + recipient.String() + `"}}`)}

	err := suite.h.Keeper.UpdateConfig(suite.ctx, pair, types.MessageInfo{Sender: suite.alice}, enable)
	suite.Require().ErrorIs(err, types.ErrUnauthorized)

	tooHigh := types.UpdateConfigMsg{Params: []byte(`{"enable_fee_share":{"fee_share_bps":1001,"fee_share_address":"` + recipient.String() + `"}}`)}
	err = suite.h.Keeper.UpdateConfig(suite.ctx, pair, types.MessageInfo{Sender: keepertest.FactoryOwner}, tooHigh)
	suite.Require().ErrorIs(err, types.ErrFeeShareBps)

	suite.Require().NoError(suite.h.Keeper.UpdateConfig(suite.ctx, pair, types.MessageInfo{Sender: keepertest.FactoryOwner}, enable))
	suite.Require().True(hasEvent(suite.ctx, types.EventTypeUpdateConfig))

	offer := native(luna, 1_500_000_000)
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.bob, coins(offer)))
	resp, err := suite.h.Keeper.Swap(suite.ctx, pair, types.MessageInfo{Sender: suite.bob, Funds: coins(offer)}, types.SwapMsg{OfferAsset: offer, MaxSpread: decPtr("0.1")})
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(949_523_810), resp.ReturnAmount)
	suite.Require().Equal(math.NewInt(71_428), resp.FeeShareAmount)
	suite.Require().Equal(math.NewInt(71_428), suite.balance(recipient, "uusd"))

	cfg, err := suite.h.Keeper.Config(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Contains(string(cfg.Params), `"bps":250`)

	suite.Require().NoError(suite.h.Keeper.UpdateConfig(suite.ctx, pair, types.MessageInfo{Sender: keepertest.FactoryOwner}, types.UpdateConfigMsg{Params: []byte(`{"disable_fee_share":{}}`)}))
	cfg, err = suite.h.Keeper.Config(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().NotContains(string(cfg.Params), "fee_share")
}

func (suite *KeeperTestSuite) TestCumulativePrices() {
	pair := suite.xykPool("")
	suite.nextBlock(24 * time.Hour)

	res, err := suite.h.Keeper.CumulativePrices(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Len(res.CumulativePrices, 2)
	suite.Require().Equal(luna, res.CumulativePrices[0].From)
	suite.Require().Equal(usd, res.CumulativePrices[0].To)
	suite.Require().Equal(math.NewInt(57_600_000_000), res.CumulativePrices[0].Value)
	suite.Require().Equal(math.NewInt(129_600_000_000), res.CumulativePrices[1].Value)

	// a swap persists the same accrual and the query agrees within the block
	offer := native(luna, 1_000_000)
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.bob, coins(offer)))
	_, err = suite.h.Keeper.Swap(suite.ctx, pair, types.MessageInfo{Sender: suite.bob, Funds: coins(offer)}, types.SwapMsg{OfferAsset: offer})
	suite.Require().NoError(err)
	again, err := suite.h.Keeper.CumulativePrices(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Equal(res.CumulativePrices, again.CumulativePrices)

	cfg, err := suite.h.Keeper.Config(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Equal(uint64(suite.ctx.BlockTime().Unix()), cfg.BlockTimeLast)

	_, err = suite.h.Keeper.Observe(suite.ctx, pair, 0)
	suite.Require().ErrorIs(err, types.ErrNotSupported)
	_, err = suite.h.Keeper.ComputeD(suite.ctx, pair)
	suite.Require().ErrorIs(err, types.ErrNotSupported)
}

func (suite *KeeperTestSuite) TestAssetBalanceTracking() {
	pair := suite.xykPool(`{"track_asset_balances":true}`)
	height := uint64(suite.h.Height())

	suite.nextBlock(5 * time.Second)
	offer := native(luna, 1_500_000_000)
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.bob, coins(offer)))
	_, err := suite.h.Keeper.Swap(suite.ctx, pair, types.MessageInfo{Sender: suite.bob, Funds: coins(offer)}, types.SwapMsg{OfferAsset: offer, MaxSpread: decPtr("0.1")})
	suite.Require().NoError(err)

	at, err := suite.h.Keeper.AssetBalanceAt(suite.ctx, pair, types.AssetBalanceAtQuery{AssetInfo: luna, BlockHeight: height - 1})
	suite.Require().NoError(err)
	suite.Require().Nil(at)

	at, err = suite.h.Keeper.AssetBalanceAt(suite.ctx, pair, types.AssetBalanceAtQuery{AssetInfo: luna, BlockHeight: height})
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(30_000_000_000), *at)

	at, err = suite.h.Keeper.AssetBalanceAt(suite.ctx, pair, types.AssetBalanceAtQuery{AssetInfo: luna, BlockHeight: height + 10})
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(31_500_000_000), *at)

	err = suite.h.Keeper.UpdateConfig(suite.ctx, pair, types.MessageInfo{Sender: keepertest.FactoryOwner}, types.UpdateConfigMsg{Params: []byte(`{"enable_asset_balances_tracking":{}}`)})
	suite.Require().ErrorIs(err, types.ErrTrackingAlreadyEnabled)
}

func (suite *KeeperTestSuite) TestEnableTrackingSnapshotsCurrentReserves() {
	pair := suite.xykPool("")
	err := suite.h.Keeper.UpdateConfig(suite.ctx, pair, types.MessageInfo{Sender: keepertest.FactoryOwner}, types.UpdateConfigMsg{Params: []byte(`{"enable_asset_balances_tracking":{}}`)})
	suite.Require().NoError(err)

	at, err := suite.h.Keeper.AssetBalanceAt(suite.ctx, pair, types.AssetBalanceAtQuery{AssetInfo: usd, BlockHeight: uint64(suite.h.Height())})
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(20_000_000_000), *at)
}

func (suite *KeeperTestSuite) TestTokenPairReceive() {
	token, err := suite.h.Tokens.Create(suite.ctx, "TKN", 6)
	suite.Require().NoError(err)
	tkn := types.TokenAsset(token.String())
	pair := keepertest.CreatePair(suite.T(), suite.h, suite.ctx, types.PairTypeXYK, []types.AssetInfo{tkn, usd}, "")

	info, err := suite.h.Keeper.Pair(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Equal([2]types.AssetInfo{usd, tkn}, info.AssetInfos)

	deposit := []types.Asset{types.NewAsset(tkn, math.NewInt(30_000_000_000)), native(usd, 20_000_000_000)}
	funds := coins(deposit[1])
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.alice, funds))
	suite.Require().NoError(suite.h.Tokens.Mint(suite.ctx, token, suite.alice, deposit[0].Amount))

	_, err = suite.h.Keeper.ProvideLiquidity(suite.ctx, pair, types.MessageInfo{Sender: suite.alice, Funds: funds}, types.ProvideLiquidityMsg{Assets: deposit})
	suite.Require().Error(err, "no allowance")

	suite.h.Tokens.IncreaseAllowance(suite.ctx, token, suite.alice, pair, deposit[0].Amount)
	_, err = suite.h.Keeper.ProvideLiquidity(suite.ctx, pair, types.MessageInfo{Sender: suite.alice, Funds: funds}, types.ProvideLiquidityMsg{Assets: deposit})
	suite.Require().NoError(err)
	suite.Require().True(suite.h.Tokens.Allowance(suite.ctx, token, suite.alice, pair).IsZero())

	suite.Require().NoError(suite.h.Tokens.Mint(suite.ctx, token, suite.bob, math.NewInt(1_500_000_000)))
	resp, err := suite.h.SendToken(suite.ctx, token, suite.bob, pair, math.NewInt(1_500_000_000), types.Cw20HookMsg{
		Swap: &types.Cw20SwapMsg{MaxSpread: decPtr("0.1")},
	})
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(949_523_810), resp.ReturnAmount)
	suite.Require().Equal(math.NewInt(949_523_810), suite.balance(suite.bob, "uusd"))

	held, err := suite.h.Tokens.Balance(suite.ctx, token, pair)
	suite.Require().NoError(err)
	suite.Require().Equal(math.NewInt(31_500_000_000), held)

	// a hook from a token the pair does not trade is rejected
	other, err := suite.h.Tokens.Create(suite.ctx, "OTH", 6)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.h.Tokens.Mint(suite.ctx, other, suite.bob, math.NewInt(1_000)))
	_, err = suite.h.SendToken(suite.ctx, other, suite.bob, pair, math.NewInt(1_000), types.Cw20HookMsg{Swap: &types.Cw20SwapMsg{}})
	suite.Require().ErrorIs(err, types.ErrAssetMismatch)
}

func (suite *KeeperTestSuite) TestExecuteJSON() {
	pair := suite.xykPool("")
	offer := native(luna, 1_000_000)
	suite.Require().NoError(suite.h.Fund(suite.ctx, suite.bob, coins(offer)))

	raw := []byte(`{"swap":{"offer_asset":{"info":{"native_token":{"denom":"uluna"}},"amount":"1000000"}}}`)
	suite.Require().NoError(suite.h.Keeper.ExecuteJSON(suite.ctx, pair, types.MessageInfo{Sender: suite.bob, Funds: coins(offer)}, raw))
	suite.Require().True(suite.balance(suite.bob, "uusd").IsPositive())

	err := suite.h.Keeper.ExecuteJSON(suite.ctx, pair, types.MessageInfo{Sender: suite.bob}, []byte(`{"swap":{},"claim_ownership":{}}`))
	suite.Require().ErrorIs(err, types.ErrInvalidMsg)

	out, err := suite.h.Keeper.Query(suite.ctx, pair, []byte(`{"pool":{}}`))
	suite.Require().NoError(err)
	suite.Require().Contains(string(out), `"total_share":"24494897427"`)
}

func TestDeferredLPTokenBinding(t *testing.T) {
	h, ctx := keepertest.PairKeeper(t, keepertest.WithDeferredLPReplies)
	alice := keepertest.TestAddr("alice")
	pair := keepertest.CreatePair(t, h, ctx, types.PairTypeXYK, []types.AssetInfo{luna, usd}, "")

	deposit := []types.Asset{native(luna, 1_000_000), native(usd, 1_000_000)}
	require.NoError(t, h.Fund(ctx, alice, coins(deposit...)))
	_, err := h.Keeper.ProvideLiquidity(ctx, pair, types.MessageInfo{Sender: alice, Funds: coins(deposit...)}, types.ProvideLiquidityMsg{Assets: deposit})
	require.ErrorIs(t, err, types.ErrLPTokenPending)

	pool, err := h.Keeper.Pool(ctx, pair)
	require.NoError(t, err)
	require.True(t, pool.TotalShare.IsZero())

	require.NoError(t, h.DeliverLPReplies(ctx))
	share, err := h.Keeper.ProvideLiquidity(ctx, pair, types.MessageInfo{Sender: alice, Funds: coins(deposit...)}, types.ProvideLiquidityMsg{Assets: deposit})
	require.NoError(t, err)
	require.Equal(t, math.NewInt(999_000), share)

	err = h.Keeper.HandleLPTokenReply(ctx, pair, types.LPTokenReply{Denom: "factory/other/share"})
	require.ErrorIs(t, err, types.ErrLPTokenAlreadySet)
}
