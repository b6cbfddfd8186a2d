package sandbox

import (
	"context"

	"cosmossdk.io/math"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

var (
	balancesPrefix = []byte{0x01}
	supplyPrefix   = []byte{0x02}
)

// Bank is a minimal native coin ledger kept in its own store so it branches and commits with the
// pair state.
type Bank struct {
	key storetypes.StoreKey
}

var _ types.BankKeeper = Bank{}

func NewBank(key storetypes.StoreKey) Bank {
	return Bank{key: key}
}

func (b Bank) store(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(b.key)
}

func (b Bank) balances(ctx context.Context, addr sdk.AccAddress) storetypes.KVStore {
	return prefix.NewStore(b.store(ctx), append(append([]byte{}, balancesPrefix...), address.MustLengthPrefix(addr)...))
}

func readInt(bz []byte) math.Int {
	if bz == nil {
		return math.ZeroInt()
	}
	var v math.Int
	if err := v.Unmarshal(bz); err != nil {
		panic(err)
	}
	return v
}

func writeInt(store storetypes.KVStore, key []byte, v math.Int) {
	if v.IsZero() {
		store.Delete(key)
		return
	}
	bz, err := v.Marshal()
	if err != nil {
		panic(err)
	}
	store.Set(key, bz)
}

func (b Bank) GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, readInt(b.balances(ctx, addr).Get([]byte(denom))))
}

// GetAllBalances lists every non-zero balance of addr.
func (b Bank) GetAllBalances(ctx context.Context, addr sdk.AccAddress) sdk.Coins {
	store := b.balances(ctx, addr)
	iter := store.Iterator(nil, nil)
	defer iter.Close()
	coins := sdk.NewCoins()
	for ; iter.Valid(); iter.Next() {
		coins = coins.Add(sdk.NewCoin(string(iter.Key()), readInt(iter.Value())))
	}
	return coins
}

func (b Bank) addBalance(ctx context.Context, addr sdk.AccAddress, coin sdk.Coin) {
	store := b.balances(ctx, addr)
	writeInt(store, []byte(coin.Denom), readInt(store.Get([]byte(coin.Denom))).Add(coin.Amount))
}

func (b Bank) subBalance(ctx context.Context, addr sdk.AccAddress, coin sdk.Coin) error {
	store := b.balances(ctx, addr)
	have := readInt(store.Get([]byte(coin.Denom)))
	if have.LT(coin.Amount) {
		return sdkerrors.ErrInsufficientFunds.Wrapf("%s has %s%s, needs %s", addr, have, coin.Denom, coin)
	}
	writeInt(store, []byte(coin.Denom), have.Sub(coin.Amount))
	return nil
}

func (b Bank) SendCoins(ctx context.Context, from, to sdk.AccAddress, amt sdk.Coins) error {
	if !amt.IsValid() {
		return sdkerrors.ErrInvalidCoins.Wrap(amt.String())
	}
	for _, coin := range amt {
		if err := b.subBalance(ctx, from, coin); err != nil {
			return err
		}
		b.addBalance(ctx, to, coin)
	}
	return nil
}

func (b Bank) MintCoins(ctx context.Context, to sdk.AccAddress, amt sdk.Coins) error {
	if !amt.IsValid() {
		return sdkerrors.ErrInvalidCoins.Wrap(amt.String())
	}
	supply := prefix.NewStore(b.store(ctx), supplyPrefix)
	for _, coin := range amt {
		b.addBalance(ctx, to, coin)
		writeInt(supply, []byte(coin.Denom), readInt(supply.Get([]byte(coin.Denom))).Add(coin.Amount))
	}
	return nil
}

func (b Bank) BurnCoins(ctx context.Context, from sdk.AccAddress, amt sdk.Coins) error {
	if !amt.IsValid() {
		return sdkerrors.ErrInvalidCoins.Wrap(amt.String())
	}
	supply := prefix.NewStore(b.store(ctx), supplyPrefix)
	for _, coin := range amt {
		if err := b.subBalance(ctx, from, coin); err != nil {
			return err
		}
		writeInt(supply, []byte(coin.Denom), readInt(supply.Get([]byte(coin.Denom))).Sub(coin.Amount))
	}
	return nil
}

func (b Bank) GetSupply(ctx context.Context, denom string) sdk.Coin {
	return sdk.NewCoin(denom, readInt(prefix.NewStore(b.store(ctx), supplyPrefix).Get([]byte(denom))))
}
