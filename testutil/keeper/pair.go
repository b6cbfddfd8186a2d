package keeper

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/sandbox"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

// FactoryOwner owns the sandbox factory of PairKeeper.
var FactoryOwner = TestAddr("factory_owner")

// FeeAddress receives maker fees in PairKeeper.
var FeeAddress = TestAddr("maker_fee_collector")

// TestAddr derives a deterministic account from seed.
func TestAddr(seed string) sdk.AccAddress {
	addr := make([]byte, 20)
	copy(addr, seed)
	return addr
}

// PairKeeper creates a sandbox host with the default coin registry and fees:
// xyk 0.3%, stable 0.05%, concentrated fees are set by the pair params. Maker fee is 1/3 of the
// commission for xyk and stable pairs.
func PairKeeper(t testing.TB, opts ...func(*sandbox.Options)) (*sandbox.Host, sdk.Context) {
	o := sandbox.Options{Owner: FactoryOwner}
	for _, opt := range opts {
		opt(&o)
	}
	h, err := sandbox.NewHost(o)
	require.NoError(t, err)

	for denom, p := range map[string]uint8{"uluna": 6, "uusd": 6, "uatom": 6, "aevmos": 18, "satoshi": 8} {
		h.Registry.Set(denom, p)
	}
	third := math.LegacyNewDecWithPrec(3333, 4)
	h.Factory.SetFees(types.PairTypeXYK, types.FeeInfo{
		FeeAddress:   FeeAddress.String(),
		TotalFeeRate: math.LegacyNewDecWithPrec(3, 3),
		MakerFeeRate: third,
	})
	h.Factory.SetFees(types.PairTypeStable, types.FeeInfo{
		FeeAddress:   FeeAddress.String(),
		TotalFeeRate: math.LegacyNewDecWithPrec(5, 4),
		MakerFeeRate: third,
	})
	h.Factory.SetFees(types.PairTypeConcentrated, types.FeeInfo{
		TotalFeeRate: math.LegacyZeroDec(),
		MakerFeeRate: math.LegacyZeroDec(),
	})
	return h, h.Ctx()
}

// WithDeferredLPReplies makes the LP token backend reply in a later message.
func WithDeferredLPReplies(o *sandbox.Options) {
	o.DeferLPReplies = true
}

// CreatePair instantiates a pair of infos and returns its address.
func CreatePair(t testing.TB, h *sandbox.Host, ctx sdk.Context, pairType types.PairType, infos []types.AssetInfo, initParams string) sdk.AccAddress {
	msg := types.InstantiateMsg{
		PairType:    pairType,
		AssetInfos:  infos,
		FactoryAddr: FactoryOwner.String(),
	}
	if initParams != "" {
		msg.InitParams = []byte(initParams)
	}
	pair, err := h.Keeper.Instantiate(ctx, types.MessageInfo{Sender: FactoryOwner}, msg)
	require.NoError(t, err)
	return pair
}

// Provide funds provider with native assets and provides them.
func Provide(t testing.TB, h *sandbox.Host, ctx sdk.Context, pair, provider sdk.AccAddress, assets ...types.Asset) math.Int {
	var funds sdk.Coins
	for _, a := range assets {
		c, err := a.Coin()
		require.NoError(t, err)
		funds = funds.Add(c)
	}
	require.NoError(t, h.Fund(ctx, provider, funds))
	share, err := h.Keeper.ProvideLiquidity(ctx, pair, types.MessageInfo{Sender: provider, Funds: funds}, types.ProvideLiquidityMsg{Assets: assets})
	require.NoError(t, err)
	return share
}
