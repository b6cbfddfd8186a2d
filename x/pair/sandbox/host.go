// Package sandbox hosts pairs in memory: a commit multistore over memdb, a native coin ledger, a
// token ledger and static collaborators. The CLI and the keeper tests run against it.
package sandbox

import (
	"context"
	"encoding/json"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/keeper"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

// GenesisTime is the block time of the first sandbox block.
var GenesisTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Options configure a Host.
type Options struct {
	Logger log.Logger
	// Owner is the factory owner.
	Owner sdk.AccAddress
	// DeferLPReplies makes LP token creation answer in a later message.
	DeferLPReplies bool
}

// Host is an in-memory chain running the pair keeper.
type Host struct {
	Keeper     *keeper.Keeper
	Bank       Bank
	Tokens     Tokens
	Registry   *Registry
	Factory    *Factory
	Incentives *Incentives
	Orderbook  *Orderbook

	ms       storetypes.CommitMultiStore
	pairKey  storetypes.StoreKey
	header   cmtproto.Header
	logger   log.Logger
	deferred *DeferredLPTokens
}

// NewHost mounts the stores and wires the keeper.
func NewHost(opts Options) (*Host, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	pairKey := storetypes.NewKVStoreKey(types.StoreKey)
	bankKey := storetypes.NewKVStoreKey("bank")
	tokenKey := storetypes.NewKVStoreKey("cw20")

	db := dbm.NewMemDB()
	ms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	for _, key := range []storetypes.StoreKey{pairKey, bankKey, tokenKey} {
		ms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := ms.LoadLatestVersion(); err != nil {
		return nil, err
	}

	h := &Host{
		Bank:       NewBank(bankKey),
		Tokens:     NewTokens(tokenKey),
		Registry:   NewRegistry(),
		Factory:    NewFactory(opts.Owner),
		Incentives: NewIncentives(),
		Orderbook:  &Orderbook{},
		ms:         ms,
		pairKey:    pairKey,
		header:     cmtproto.Header{ChainID: "pair-sandbox", Height: 1, Time: GenesisTime},
		logger:     logger,
	}
	var lp types.LPTokenBackend = keeper.NewBankLPTokens(h.Bank)
	if opts.DeferLPReplies {
		h.deferred = &DeferredLPTokens{LPTokenBackend: lp}
		lp = h.deferred
	}
	h.Keeper = keeper.NewKeeper(pairKey, h.Bank, h.Tokens, h.Registry, h.Factory, lp, h.Incentives, h.Orderbook)
	return h, nil
}

// Ctx returns a context for the current block.
func (h *Host) Ctx() sdk.Context {
	return sdk.NewContext(h.ms, h.header, false, h.logger)
}

// Height returns the current block height.
func (h *Host) Height() int64 {
	return h.header.Height
}

// Now returns the current block time.
func (h *Host) Now() time.Time {
	return h.header.Time
}

// AdvanceBlock commits the current block and starts the next one dt later.
func (h *Host) AdvanceBlock(dt time.Duration) {
	h.ms.Commit()
	h.header.Height++
	h.header.Time = h.header.Time.Add(dt)
}

// DeliverLPReplies binds the LP tokens of pairs created with deferred replies.
func (h *Host) DeliverLPReplies(ctx context.Context) error {
	if h.deferred == nil {
		return nil
	}
	pending := h.deferred.pending
	h.deferred.pending = nil
	for _, pair := range pending {
		if err := h.Keeper.HandleLPTokenReply(ctx, pair, types.LPTokenReply{Denom: types.LPDenom(pair)}); err != nil {
			return err
		}
	}
	return nil
}

// Fund mints native coins to addr.
func (h *Host) Fund(ctx context.Context, addr sdk.AccAddress, coins sdk.Coins) error {
	return h.Bank.MintCoins(ctx, addr, coins)
}

// SendToken moves token from sender to pair and delivers the token's receive hook, like a token
// contract's send.
func (h *Host) SendToken(ctx context.Context, token, sender, pair sdk.AccAddress, amount math.Int, hook types.Cw20HookMsg) (types.SwapResponse, error) {
	raw, err := json.Marshal(hook)
	if err != nil {
		return types.SwapResponse{}, err
	}
	var resp types.SwapResponse
	cacheCtx, write := sdk.UnwrapSDKContext(ctx).CacheContext()
	if err := h.Tokens.Transfer(cacheCtx, token, sender, pair, amount); err != nil {
		return types.SwapResponse{}, err
	}
	resp, err = h.Keeper.Receive(cacheCtx, pair, types.MessageInfo{Sender: token}, types.Cw20ReceiveMsg{
		Sender: sender.String(),
		Amount: amount,
		Msg:    raw,
	})
	if err != nil {
		return types.SwapResponse{}, err
	}
	write()
	return resp, nil
}
