package sandbox

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

// Registry is a static native coin registry.
type Registry struct {
	precisions map[string]uint8
}

var _ types.CoinRegistry = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{precisions: map[string]uint8{}}
}

func (r *Registry) Set(denom string, precision uint8) {
	r.precisions[denom] = precision
}

func (r *Registry) NativePrecision(_ context.Context, denom string) (uint8, bool) {
	p, ok := r.precisions[denom]
	return p, ok
}

// Factory holds the owner, fees and incentives address a real factory would.
type Factory struct {
	OwnerAddr  sdk.AccAddress
	Incentives sdk.AccAddress
	fees       map[types.PairType]types.FeeInfo
}

var _ types.FactoryKeeper = (*Factory)(nil)

func NewFactory(owner sdk.AccAddress) *Factory {
	return &Factory{OwnerAddr: owner, fees: map[types.PairType]types.FeeInfo{}}
}

// SetFees configures the fees of a pair type.
func (f *Factory) SetFees(t types.PairType, fees types.FeeInfo) {
	f.fees[t] = fees
}

func (f *Factory) Owner(context.Context) sdk.AccAddress {
	return f.OwnerAddr
}

func (f *Factory) FeeInfo(_ context.Context, t types.PairType) (types.FeeInfo, error) {
	fees, ok := f.fees[t]
	if !ok {
		return types.FeeInfo{}, sdkerrors.ErrNotFound.Wrapf("no fees configured for %s", t)
	}
	return fees, nil
}

func (f *Factory) IncentivesAddress(context.Context) sdk.AccAddress {
	return f.Incentives
}

// Incentives records staked LP per denom and beneficiary.
type Incentives struct {
	stakes map[string]math.Int
}

var _ types.IncentivesKeeper = (*Incentives)(nil)

func NewIncentives() *Incentives {
	return &Incentives{stakes: map[string]math.Int{}}
}

func (i *Incentives) Deposit(_ context.Context, lpDenom string, beneficiary sdk.AccAddress, amount math.Int) error {
	key := lpDenom + "/" + beneficiary.String()
	staked, ok := i.stakes[key]
	if !ok {
		staked = math.ZeroInt()
	}
	i.stakes[key] = staked.Add(amount)
	return nil
}

// Staked returns the LP staked for beneficiary.
func (i *Incentives) Staked(lpDenom string, beneficiary sdk.AccAddress) math.Int {
	if v, ok := i.stakes[lpDenom+"/"+beneficiary.String()]; ok {
		return v
	}
	return math.ZeroInt()
}

// PlacedOrders is one PlaceOrders call.
type PlacedOrders struct {
	Pair     sdk.AccAddress
	Params   types.OrderbookParams
	Price    math.LegacyDec
	Reserves [2]math.Int
}

// Orderbook records the calls a concentrated pair makes to its orderbook. No orders ever fill.
type Orderbook struct {
	Reconciles int
	Placed     []PlacedOrders
}

var _ types.OrderbookKeeper = (*Orderbook)(nil)

func (o *Orderbook) Reconcile(context.Context, sdk.AccAddress, uint32) ([2]math.Int, error) {
	o.Reconciles++
	return [2]math.Int{math.ZeroInt(), math.ZeroInt()}, nil
}

func (o *Orderbook) PlaceOrders(_ context.Context, pair sdk.AccAddress, params types.OrderbookParams, price math.LegacyDec, reserves [2]math.Int) error {
	o.Placed = append(o.Placed, PlacedOrders{Pair: pair, Params: params, Price: price, Reserves: reserves})
	return nil
}

// DeferredLPTokens wraps an LP backend whose token creation replies in a later message. The
// pending pairs are bound by Host.DeliverLPReplies.
type DeferredLPTokens struct {
	types.LPTokenBackend
	pending []sdk.AccAddress
}

func (d *DeferredLPTokens) CreateToken(ctx context.Context, pair sdk.AccAddress) (*types.LPTokenReply, error) {
	if _, err := d.LPTokenBackend.CreateToken(ctx, pair); err != nil {
		return nil, err
	}
	d.pending = append(d.pending, pair)
	return nil, nil
}
