package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

// Keeper hosts every pair of the module. Each pair owns a derived account that holds its reserves.
type Keeper struct {
	storeKey   storetypes.StoreKey
	bank       types.BankKeeper
	tokens     types.TokenKeeper
	registry   types.CoinRegistry
	factory    types.FactoryKeeper
	lp         types.LPTokenBackend
	incentives types.IncentivesKeeper
	orderbook  types.OrderbookKeeper
	metrics    *PairMetrics
}

// NewKeeper creates a new pair Keeper instance. orderbook may be nil.
func NewKeeper(
	key storetypes.StoreKey,
	bank types.BankKeeper,
	tokens types.TokenKeeper,
	registry types.CoinRegistry,
	factory types.FactoryKeeper,
	lp types.LPTokenBackend,
	incentives types.IncentivesKeeper,
	orderbook types.OrderbookKeeper,
) *Keeper {
	return &Keeper{
		storeKey:   key,
		bank:       bank,
		tokens:     tokens,
		registry:   registry,
		factory:    factory,
		lp:         lp,
		incentives: incentives,
		orderbook:  orderbook,
		metrics:    NewPairMetrics(),
	}
}

// getStore returns the KVStore for the pair module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// atomically runs fn on a cached branch of ctx and commits it, events included, only if fn
// succeeds.
func (k Keeper) atomically(ctx context.Context, fn func(ctx sdk.Context) error) error {
	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()
	if err := fn(cacheCtx); err != nil {
		return err
	}
	write()
	return nil
}

func blockTime(ctx sdk.Context) uint64 {
	t := ctx.BlockTime().Unix()
	if t < 0 {
		return 0
	}
	return uint64(t)
}

func blockHeight(ctx sdk.Context) uint64 {
	h := ctx.BlockHeight()
	if h < 0 {
		return 0
	}
	return uint64(h)
}
