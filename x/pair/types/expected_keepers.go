package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BankKeeper moves native coins and mints LP coins.
type BankKeeper interface {
	SendCoins(ctx context.Context, from, to sdk.AccAddress, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
	MintCoins(ctx context.Context, to sdk.AccAddress, amt sdk.Coins) error
	BurnCoins(ctx context.Context, from sdk.AccAddress, amt sdk.Coins) error
	GetSupply(ctx context.Context, denom string) sdk.Coin
}

// TokenKeeper is the CW20-style token ledger.
type TokenKeeper interface {
	Balance(ctx context.Context, token, owner sdk.AccAddress) (math.Int, error)
	Transfer(ctx context.Context, token, from, to sdk.AccAddress, amount math.Int) error
	TransferFrom(ctx context.Context, token, spender, owner, to sdk.AccAddress, amount math.Int) error
	Decimals(ctx context.Context, token sdk.AccAddress) (uint8, error)
}

// CoinRegistry knows the decimals of native coins.
type CoinRegistry interface {
	NativePrecision(ctx context.Context, denom string) (uint8, bool)
}

// FeeInfo is the commission configuration of a pair type. FeeAddress is empty when no maker fee
// is collected.
type FeeInfo struct {
	FeeAddress   string
	TotalFeeRate math.LegacyDec
	MakerFeeRate math.LegacyDec
}

// FactoryKeeper is the pair factory.
type FactoryKeeper interface {
	Owner(ctx context.Context) sdk.AccAddress
	FeeInfo(ctx context.Context, pairType PairType) (FeeInfo, error)
	IncentivesAddress(ctx context.Context) sdk.AccAddress
}

// LPTokenReply binds a created LP token to its pair.
type LPTokenReply struct {
	Denom string
}

// LPTokenBackend creates, mints and burns LP tokens. CreateToken may answer asynchronously by
// returning a nil reply; the reply is then delivered through the keeper's HandleLPTokenReply.
type LPTokenBackend interface {
	CreateToken(ctx context.Context, pair sdk.AccAddress) (*LPTokenReply, error)
	Mint(ctx context.Context, denom string, to sdk.AccAddress, amount math.Int) error
	Burn(ctx context.Context, denom string, from sdk.AccAddress, amount math.Int) error
	Supply(ctx context.Context, denom string) math.Int
}

// IncentivesKeeper stakes LP tokens on behalf of a beneficiary.
type IncentivesKeeper interface {
	Deposit(ctx context.Context, lpDenom string, beneficiary sdk.AccAddress, amount math.Int) error
}

// OrderbookKeeper is the optional external orderbook a concentrated pair keeps in sync.
type OrderbookKeeper interface {
	// Reconcile settles filled orders and returns the amounts that flowed into (positive) or out of
	// (negative) the pair since the last call.
	Reconcile(ctx context.Context, pair sdk.AccAddress, subaccount uint32) ([2]math.Int, error)
	// PlaceOrders replaces the resting orders of the pair around price.
	PlaceOrders(ctx context.Context, pair sdk.AccAddress, params OrderbookParams, price math.LegacyDec, reserves [2]math.Int) error
}
