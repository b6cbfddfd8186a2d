package sandbox

import (
	"context"
	"encoding/json"

	"cosmossdk.io/math"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

var (
	tokenCountKey     = []byte{0x01}
	tokenInfoPrefix   = []byte{0x02}
	tokenBalPrefix    = []byte{0x03}
	tokenAllowPrefix  = []byte{0x04}
	tokenSupplyPrefix = []byte{0x05}
)

// TokenInfo describes a token contract.
type TokenInfo struct {
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Tokens is a ledger of CW20-style token contracts with balances and allowances.
type Tokens struct {
	key storetypes.StoreKey
}

var _ types.TokenKeeper = Tokens{}

func NewTokens(key storetypes.StoreKey) Tokens {
	return Tokens{key: key}
}

func (t Tokens) store(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(t.key)
}

func keyOf(p []byte, addrs ...sdk.AccAddress) []byte {
	key := append([]byte{}, p...)
	for _, a := range addrs {
		key = append(key, address.MustLengthPrefix(a)...)
	}
	return key
}

// Create registers a new token contract and returns its address.
func (t Tokens) Create(ctx context.Context, symbol string, decimals uint8) (sdk.AccAddress, error) {
	store := t.store(ctx)
	id := uint64(1)
	if bz := store.Get(tokenCountKey); bz != nil {
		id = sdk.BigEndianToUint64(bz)
	}
	store.Set(tokenCountKey, sdk.Uint64ToBigEndian(id+1))
	token := address.Module("cw20", sdk.Uint64ToBigEndian(id))
	bz, err := json.Marshal(TokenInfo{Symbol: symbol, Decimals: decimals})
	if err != nil {
		return nil, err
	}
	store.Set(keyOf(tokenInfoPrefix, token), bz)
	return token, nil
}

func (t Tokens) info(ctx context.Context, token sdk.AccAddress) (TokenInfo, error) {
	bz := t.store(ctx).Get(keyOf(tokenInfoPrefix, token))
	if bz == nil {
		return TokenInfo{}, sdkerrors.ErrNotFound.Wrapf("token %s", token)
	}
	var info TokenInfo
	err := json.Unmarshal(bz, &info)
	return info, err
}

func (t Tokens) Decimals(ctx context.Context, token sdk.AccAddress) (uint8, error) {
	info, err := t.info(ctx, token)
	return info.Decimals, err
}

func (t Tokens) Balance(ctx context.Context, token, owner sdk.AccAddress) (math.Int, error) {
	if _, err := t.info(ctx, token); err != nil {
		return math.Int{}, err
	}
	return readInt(t.store(ctx).Get(keyOf(tokenBalPrefix, token, owner))), nil
}

// Mint issues amount of token to to.
func (t Tokens) Mint(ctx context.Context, token, to sdk.AccAddress, amount math.Int) error {
	if _, err := t.info(ctx, token); err != nil {
		return err
	}
	store := t.store(ctx)
	writeInt(store, keyOf(tokenBalPrefix, token, to), readInt(store.Get(keyOf(tokenBalPrefix, token, to))).Add(amount))
	supply := prefix.NewStore(store, tokenSupplyPrefix)
	writeInt(supply, token, readInt(supply.Get(token)).Add(amount))
	return nil
}

func (t Tokens) Transfer(ctx context.Context, token, from, to sdk.AccAddress, amount math.Int) error {
	if _, err := t.info(ctx, token); err != nil {
		return err
	}
	store := t.store(ctx)
	have := readInt(store.Get(keyOf(tokenBalPrefix, token, from)))
	if have.LT(amount) {
		return sdkerrors.ErrInsufficientFunds.Wrapf("%s holds %s of %s, needs %s", from, have, token, amount)
	}
	writeInt(store, keyOf(tokenBalPrefix, token, from), have.Sub(amount))
	writeInt(store, keyOf(tokenBalPrefix, token, to), readInt(store.Get(keyOf(tokenBalPrefix, token, to))).Add(amount))
	return nil
}

// IncreaseAllowance lets spender move amount more of owner's token.
func (t Tokens) IncreaseAllowance(ctx context.Context, token, owner, spender sdk.AccAddress, amount math.Int) {
	store := t.store(ctx)
	key := keyOf(tokenAllowPrefix, token, owner, spender)
	writeInt(store, key, readInt(store.Get(key)).Add(amount))
}

func (t Tokens) Allowance(ctx context.Context, token, owner, spender sdk.AccAddress) math.Int {
	return readInt(t.store(ctx).Get(keyOf(tokenAllowPrefix, token, owner, spender)))
}

func (t Tokens) TransferFrom(ctx context.Context, token, spender, owner, to sdk.AccAddress, amount math.Int) error {
	store := t.store(ctx)
	key := keyOf(tokenAllowPrefix, token, owner, spender)
	allowance := readInt(store.Get(key))
	if allowance.LT(amount) {
		return sdkerrors.ErrUnauthorized.Wrapf("allowance %s is below %s", allowance, amount)
	}
	writeInt(store, key, allowance.Sub(amount))
	return t.Transfer(ctx, token, owner, to, amount)
}
