package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/sandbox"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

// AssetDef is one side of a pool in the pool file. Token assets are created as token contracts in
// the sandbox under Denom as their symbol.
type AssetDef struct {
	Denom     string `mapstructure:"denom"`
	Precision uint8  `mapstructure:"precision"`
	Token     bool   `mapstructure:"token"`
}

// PoolDef is a pool of the pool file.
type PoolDef struct {
	Name        string         `mapstructure:"name"`
	Type        string         `mapstructure:"type"`
	Assets      []AssetDef     `mapstructure:"assets"`
	Reserves    []string       `mapstructure:"reserves"`
	Params      map[string]any `mapstructure:"params"`
	FeeBps      uint16         `mapstructure:"fee_bps"`
	MakerFeeBps uint16         `mapstructure:"maker_fee_bps"`
}

// LoadPools reads the pools key of the configuration held by v.
func LoadPools(v *viper.Viper) ([]PoolDef, error) {
	var pools []PoolDef
	if err := v.UnmarshalKey("pools", &pools); err != nil {
		return nil, fmt.Errorf("decode pools: %w", err)
	}
	if len(pools) == 0 {
		return nil, fmt.Errorf("no pools defined")
	}
	seen := map[string]bool{}
	for _, p := range pools {
		if p.Name == "" {
			return nil, fmt.Errorf("pool without a name")
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("pool %q defined twice", p.Name)
		}
		seen[p.Name] = true
		if len(p.Assets) != 2 || len(p.Reserves) != 2 {
			return nil, fmt.Errorf("pool %q: exactly two assets and two reserves are required", p.Name)
		}
	}
	return pools, nil
}

// initParams renders the loosely typed params of a pool file as the JSON init params of its
// pair type. Decimal params are strings on the wire while YAML reads them as numbers.
func (p PoolDef) initParams() (json.RawMessage, error) {
	if len(p.Params) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(p.Params))
	for k, v := range p.Params {
		switch {
		case k == "ma_half_time" || (k == "amp" && types.PairType(p.Type) == types.PairTypeStable):
			n, err := cast.ToUint64E(v)
			if err != nil {
				return nil, fmt.Errorf("pool %q: %s: %w", p.Name, k, err)
			}
			out[k] = n
		case k == "track_asset_balances":
			out[k] = cast.ToBool(v)
		default:
			switch v.(type) {
			case map[string]any, []any:
				out[k] = v
			default:
				out[k] = cast.ToString(v)
			}
		}
	}
	return json.Marshal(out)
}

// World is a sandbox host seeded with the pools of a pool file.
type World struct {
	Host  *sandbox.Host
	Pairs map[string]sdk.AccAddress
	// Tokens maps the symbol of each token asset to its contract.
	Tokens map[string]sdk.AccAddress
}

var (
	worldOwner    = sdk.AccAddress("pairsim_owner_______")
	worldProvider = sdk.AccAddress("pairsim_provider____")
	worldFees     = sdk.AccAddress("pairsim_fees________")
)

// NewWorld instantiates every pool and provides its reserves. Fees are configured per pair type,
// so pools of one type must agree on them.
func NewWorld(pools []PoolDef, logger log.Logger) (*World, error) {
	h, err := sandbox.NewHost(sandbox.Options{Logger: logger, Owner: worldOwner})
	if err != nil {
		return nil, err
	}
	w := &World{Host: h, Pairs: map[string]sdk.AccAddress{}, Tokens: map[string]sdk.AccAddress{}}
	ctx := h.Ctx()

	fees := map[types.PairType]PoolDef{}
	for _, p := range pools {
		pt := types.PairType(p.Type)
		if prev, ok := fees[pt]; ok && (prev.FeeBps != p.FeeBps || prev.MakerFeeBps != p.MakerFeeBps) {
			return nil, fmt.Errorf("pools %q and %q of type %s set different fees", prev.Name, p.Name, pt)
		}
		fees[pt] = p
		info := types.FeeInfo{
			TotalFeeRate: math.LegacyNewDec(int64(p.FeeBps)).QuoInt64(10_000),
			MakerFeeRate: math.LegacyNewDec(int64(p.MakerFeeBps)).QuoInt64(10_000),
		}
		if p.MakerFeeBps > 0 {
			info.FeeAddress = worldFees.String()
		}
		h.Factory.SetFees(pt, info)
	}

	for _, p := range pools {
		if err := w.addPool(ctx, p); err != nil {
			return nil, fmt.Errorf("pool %q: %w", p.Name, err)
		}
	}
	return w, nil
}

func (w *World) addPool(ctx sdk.Context, p PoolDef) error {
	h := w.Host
	infos := make([]types.AssetInfo, 2)
	for i, a := range p.Assets {
		if !a.Token {
			h.Registry.Set(a.Denom, a.Precision)
			infos[i] = types.NativeAsset(a.Denom)
			continue
		}
		token, ok := w.Tokens[a.Denom]
		if !ok {
			var err error
			if token, err = h.Tokens.Create(ctx, a.Denom, a.Precision); err != nil {
				return err
			}
			w.Tokens[a.Denom] = token
		}
		infos[i] = types.TokenAsset(token.String())
	}
	params, err := p.initParams()
	if err != nil {
		return err
	}
	pair, err := h.Keeper.Instantiate(ctx, types.MessageInfo{Sender: worldOwner}, types.InstantiateMsg{
		PairType:    types.PairType(p.Type),
		AssetInfos:  infos,
		FactoryAddr: worldOwner.String(),
		InitParams:  params,
	})
	if err != nil {
		return err
	}

	var (
		deposits []types.Asset
		funds    sdk.Coins
	)
	for i, raw := range p.Reserves {
		amount, ok := math.NewIntFromString(raw)
		if !ok || amount.IsNegative() {
			return fmt.Errorf("invalid reserve %q", raw)
		}
		deposits = append(deposits, types.NewAsset(infos[i], amount))
		if infos[i].IsNative() {
			funds = funds.Add(sdk.NewCoin(infos[i].NativeToken.Denom, amount))
			continue
		}
		token := sdk.MustAccAddressFromBech32(infos[i].Token.ContractAddr)
		if err := h.Tokens.Mint(ctx, token, worldProvider, amount); err != nil {
			return err
		}
		h.Tokens.IncreaseAllowance(ctx, token, worldProvider, pair, amount)
	}
	if !funds.Empty() {
		if err := h.Fund(ctx, worldProvider, funds); err != nil {
			return err
		}
	}
	if _, err := h.Keeper.ProvideLiquidity(ctx, pair, types.MessageInfo{Sender: worldProvider, Funds: funds}, types.ProvideLiquidityMsg{
		Assets: deposits,
	}); err != nil {
		return err
	}
	w.Pairs[p.Name] = pair
	return nil
}

// Names returns the pool names in order.
func (w *World) Names() []string {
	names := make([]string, 0, len(w.Pairs))
	for name := range w.Pairs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pair looks up a pool by name.
func (w *World) Pair(name string) (sdk.AccAddress, error) {
	pair, ok := w.Pairs[name]
	if !ok {
		return nil, fmt.Errorf("unknown pool %q", name)
	}
	return pair, nil
}

// ParseAsset reads an amount and a denom, like 1000uluna, as an asset of pool. A denom naming a
// token asset of the pool file resolves to the token contract.
func (w *World) ParseAsset(s string) (types.Asset, error) {
	coin, err := sdk.ParseCoinNormalized(s)
	if err != nil {
		return types.Asset{}, err
	}
	return types.NewAsset(w.AssetInfo(coin.Denom), coin.Amount), nil
}

// AssetInfo resolves a denom or a token symbol of the pool file.
func (w *World) AssetInfo(denom string) types.AssetInfo {
	if token, ok := w.Tokens[denom]; ok {
		return types.TokenAsset(token.String())
	}
	return types.NativeAsset(denom)
}

// QueryCtx returns a read context at now, or at the seeding block when now precedes it. Queries
// tick the price accumulators to it without writing.
func (w *World) QueryCtx(ctx context.Context, now time.Time) sdk.Context {
	sdkCtx := w.Host.Ctx()
	if ctx != nil {
		sdkCtx = sdkCtx.WithContext(ctx)
	}
	if now.After(sdkCtx.BlockTime()) {
		sdkCtx = sdkCtx.WithBlockTime(now)
	}
	return sdkCtx
}
