package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

// BankLPTokens issues LP tokens as bank coins under a per pair factory denom. Creation is
// synchronous.
type BankLPTokens struct {
	bank types.BankKeeper
}

var _ types.LPTokenBackend = BankLPTokens{}

// NewBankLPTokens returns an LP backend minting through bank.
func NewBankLPTokens(bank types.BankKeeper) BankLPTokens {
	return BankLPTokens{bank: bank}
}

func (b BankLPTokens) CreateToken(_ context.Context, pair sdk.AccAddress) (*types.LPTokenReply, error) {
	return &types.LPTokenReply{Denom: types.LPDenom(pair)}, nil
}

func (b BankLPTokens) Mint(ctx context.Context, denom string, to sdk.AccAddress, amount math.Int) error {
	if !amount.IsPositive() {
		return nil
	}
	return b.bank.MintCoins(ctx, to, sdk.NewCoins(sdk.NewCoin(denom, amount)))
}

func (b BankLPTokens) Burn(ctx context.Context, denom string, from sdk.AccAddress, amount math.Int) error {
	if !amount.IsPositive() {
		return nil
	}
	return b.bank.BurnCoins(ctx, from, sdk.NewCoins(sdk.NewCoin(denom, amount)))
}

func (b BankLPTokens) Supply(ctx context.Context, denom string) math.Int {
	return b.bank.GetSupply(ctx, denom).Amount
}
