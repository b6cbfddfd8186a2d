package keeper

import (
	"context"
	"encoding/json"

	"cosmossdk.io/math"
	"cosmossdk.io/store/prefix"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/oracle"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

func (k Keeper) getJSON(ctx context.Context, key []byte, v any) (bool, error) {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
		return false, nil
	}
	if err := json.Unmarshal(bz, v); err != nil {
		return false, err
	}
	return true, nil
}

func (k Keeper) setJSON(ctx context.Context, key []byte, v any) error {
	bz, err := json.Marshal(v)
	if err != nil {
		return err
	}
	k.getStore(ctx).Set(key, bz)
	return nil
}

// nextPairID returns the id of the next pair and bumps the counter.
func (k Keeper) nextPairID(ctx context.Context) uint64 {
	store := k.getStore(ctx)
	var id uint64 = 1
	if bz := store.Get(types.PairCountKey); bz != nil {
		id = sdk.BigEndianToUint64(bz)
	}
	store.Set(types.PairCountKey, sdk.Uint64ToBigEndian(id+1))
	return id
}

// GetConfig retrieves the config of a pair.
func (k Keeper) GetConfig(ctx context.Context, pair sdk.AccAddress) (types.Config, error) {
	var cfg types.Config
	found, err := k.getJSON(ctx, types.ConfigKey(pair), &cfg)
	if err != nil {
		return types.Config{}, err
	}
	if !found {
		return types.Config{}, types.ErrPairNotFound.Wrap(pair.String())
	}
	return cfg, nil
}

// SetConfig stores the config of a pair.
func (k Keeper) SetConfig(ctx context.Context, pair sdk.AccAddress, cfg types.Config) error {
	return k.setJSON(ctx, types.ConfigKey(pair), cfg)
}

// GetAllPairs returns the address of every pair.
func (k Keeper) GetAllPairs(ctx context.Context) ([]sdk.AccAddress, error) {
	store := prefix.NewStore(k.getStore(ctx), types.ConfigKeyPrefix)
	iter := store.Iterator(nil, nil)
	defer iter.Close()

	var pairs []sdk.AccAddress
	for ; iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) == 0 || int(key[0]) != len(key)-1 {
			return nil, types.ErrInvalidAddress.Wrap("malformed config key")
		}
		pairs = append(pairs, sdk.AccAddress(append([]byte{}, key[1:]...)))
	}
	return pairs, nil
}

func (k Keeper) getPrecisions(ctx context.Context, pair sdk.AccAddress) ([2]uint8, error) {
	var p [2]uint8
	found, err := k.getJSON(ctx, types.PrecisionsKey(pair), &p)
	if err != nil {
		return p, err
	}
	if !found {
		return p, types.ErrPairNotFound.Wrapf("precisions of %s", pair)
	}
	return p, nil
}

func (k Keeper) setPrecisions(ctx context.Context, pair sdk.AccAddress, p [2]uint8) error {
	return k.setJSON(ctx, types.PrecisionsKey(pair), p)
}

func (k Keeper) getCumulativePrices(ctx context.Context, pair sdk.AccAddress) ([]types.CumulativePrice, error) {
	var prices []types.CumulativePrice
	if _, err := k.getJSON(ctx, types.CumulativePricesKey(pair), &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

func (k Keeper) setCumulativePrices(ctx context.Context, pair sdk.AccAddress, prices []types.CumulativePrice) error {
	return k.setJSON(ctx, types.CumulativePricesKey(pair), prices)
}

func (k Keeper) getOwnershipProposal(ctx context.Context, pair sdk.AccAddress) (types.OwnershipProposal, bool, error) {
	var p types.OwnershipProposal
	found, err := k.getJSON(ctx, types.OwnershipKey(pair), &p)
	return p, found, err
}

func (k Keeper) setOwnershipProposal(ctx context.Context, pair sdk.AccAddress, p types.OwnershipProposal) error {
	return k.setJSON(ctx, types.OwnershipKey(pair), p)
}

func (k Keeper) deleteOwnershipProposal(ctx context.Context, pair sdk.AccAddress) {
	k.getStore(ctx).Delete(types.OwnershipKey(pair))
}

// PairByLPDenom resolves the pair that issued an LP denom.
func (k Keeper) PairByLPDenom(ctx context.Context, denom string) (sdk.AccAddress, bool) {
	bz := k.getStore(ctx).Get(types.LPDenomIndexKey(denom))
	if bz == nil {
		return nil, false
	}
	return sdk.AccAddress(bz), true
}

func (k Keeper) observations(ctx context.Context, pair sdk.AccAddress) oracle.Buffer {
	return oracle.NewBuffer(prefix.NewStore(k.getStore(ctx), types.ObservationsPrefix(pair)), oracle.ObservationsSize)
}

// saveBalance records the reserve of one asset at height.
func (k Keeper) saveBalance(ctx context.Context, pair sdk.AccAddress, info types.AssetInfo, height uint64, amount math.Int) error {
	bz, err := amount.Marshal()
	if err != nil {
		return err
	}
	store := prefix.NewStore(k.getStore(ctx), types.BalanceHistoryPrefix(pair, info))
	store.Set(types.HeightKey(height), bz)
	return nil
}

// balanceAt returns the latest snapshot at or before height.
func (k Keeper) balanceAt(ctx context.Context, pair sdk.AccAddress, info types.AssetInfo, height uint64) (*math.Int, error) {
	store := prefix.NewStore(k.getStore(ctx), types.BalanceHistoryPrefix(pair, info))
	iter := store.ReverseIterator(nil, types.HeightKey(height+1))
	defer iter.Close()
	if !iter.Valid() {
		return nil, nil
	}
	var amount math.Int
	if err := amount.Unmarshal(iter.Value()); err != nil {
		return nil, err
	}
	return &amount, nil
}
