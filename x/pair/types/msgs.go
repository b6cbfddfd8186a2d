package types

import (
	"encoding/json"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MessageInfo is the sender of a message and the coins attached to it.
type MessageInfo struct {
	Sender sdk.AccAddress
	Funds  sdk.Coins
}

// InstantiateMsg creates a pair.
type InstantiateMsg struct {
	PairType    PairType        `json:"pair_type"`
	AssetInfos  []AssetInfo     `json:"asset_infos"`
	FactoryAddr string          `json:"factory_addr"`
	InitParams  json.RawMessage `json:"init_params,omitempty"`
}

// ValidateBasic checks the message without state.
func (msg InstantiateMsg) ValidateBasic() error {
	if err := msg.PairType.Validate(); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(msg.FactoryAddr); err != nil {
		return ErrInvalidAddress.Wrapf("factory: %s", err)
	}
	return ValidatePairAssets(msg.AssetInfos)
}

// ProvideLiquidityMsg deposits up to two assets.
type ProvideLiquidityMsg struct {
	Assets            []Asset         `json:"assets"`
	SlippageTolerance *math.LegacyDec `json:"slippage_tolerance,omitempty"`
	AutoStake         bool            `json:"auto_stake,omitempty"`
	Receiver          string          `json:"receiver,omitempty"`
	MinLPToReceive    *math.Int       `json:"min_lp_to_receive,omitempty"`
}

// ValidateBasic checks the message without state.
func (msg ProvideLiquidityMsg) ValidateBasic() error {
	if len(msg.Assets) == 0 || len(msg.Assets) > 2 {
		return ErrInvalidNumberOfAssets.Wrapf("got %d", len(msg.Assets))
	}
	if len(msg.Assets) == 2 && msg.Assets[0].Info.Equal(msg.Assets[1].Info) {
		return ErrDoublingAssets
	}
	nonZero := false
	for _, a := range msg.Assets {
		if a.Amount.IsNil() || a.Amount.IsNegative() {
			return ErrInvalidZeroAmount.Wrapf("invalid amount for %s", a.Info)
		}
		nonZero = nonZero || a.Amount.IsPositive()
	}
	if !nonZero {
		return ErrInvalidZeroAmount
	}
	if msg.Receiver != "" {
		if _, err := sdk.AccAddressFromBech32(msg.Receiver); err != nil {
			return ErrInvalidAddress.Wrapf("receiver: %s", err)
		}
	}
	return nil
}

// WithdrawLiquidityMsg burns the LP coins attached to it. Assets selects an imbalanced withdraw.
type WithdrawLiquidityMsg struct {
	Assets             []Asset `json:"assets,omitempty"`
	MinAssetsToReceive []Asset `json:"min_assets_to_receive,omitempty"`
}

// SwapMsg sells OfferAsset.
type SwapMsg struct {
	OfferAsset   Asset           `json:"offer_asset"`
	AskAssetInfo *AssetInfo      `json:"ask_asset_info,omitempty"`
	BeliefPrice  *math.LegacyDec `json:"belief_price,omitempty"`
	MaxSpread    *math.LegacyDec `json:"max_spread,omitempty"`
	To           string          `json:"to,omitempty"`
}

// ValidateBasic checks the message without state.
func (msg SwapMsg) ValidateBasic() error {
	if msg.OfferAsset.Amount.IsNil() || !msg.OfferAsset.Amount.IsPositive() {
		return ErrSwapZeroAmount
	}
	if msg.BeliefPrice != nil && !msg.BeliefPrice.IsPositive() {
		return ErrInvalidMsg.Wrap("belief price must be positive")
	}
	if msg.To != "" {
		if _, err := sdk.AccAddressFromBech32(msg.To); err != nil {
			return ErrInvalidAddress.Wrapf("to: %s", err)
		}
	}
	return nil
}

// Cw20ReceiveMsg is delivered by a token contract after tokens were sent to the pair.
type Cw20ReceiveMsg struct {
	Sender string          `json:"sender"`
	Amount math.Int        `json:"amount"`
	Msg    json.RawMessage `json:"msg"`
}

// Cw20HookMsg is the payload of a Cw20ReceiveMsg.
type Cw20HookMsg struct {
	Swap *Cw20SwapMsg `json:"swap,omitempty"`
}

// Cw20SwapMsg sells the tokens received with the hook.
type Cw20SwapMsg struct {
	AskAssetInfo *AssetInfo      `json:"ask_asset_info,omitempty"`
	BeliefPrice  *math.LegacyDec `json:"belief_price,omitempty"`
	MaxSpread    *math.LegacyDec `json:"max_spread,omitempty"`
	To           string          `json:"to,omitempty"`
}

// UpdateConfigMsg carries a flavor specific update payload.
type UpdateConfigMsg struct {
	Params json.RawMessage `json:"params"`
}

// ProposeNewOwnerMsg starts an ownership transfer.
type ProposeNewOwnerMsg struct {
	Owner     string `json:"owner"`
	ExpiresIn uint64 `json:"expires_in"`
}

// ExecuteMsg is the union of state changing pair messages.
type ExecuteMsg struct {
	ProvideLiquidity      *ProvideLiquidityMsg  `json:"provide_liquidity,omitempty"`
	WithdrawLiquidity     *WithdrawLiquidityMsg `json:"withdraw_liquidity,omitempty"`
	Swap                  *SwapMsg              `json:"swap,omitempty"`
	Receive               *Cw20ReceiveMsg       `json:"receive,omitempty"`
	UpdateConfig          *UpdateConfigMsg      `json:"update_config,omitempty"`
	ProposeNewOwner       *ProposeNewOwnerMsg   `json:"propose_new_owner,omitempty"`
	DropOwnershipProposal *Empty                `json:"drop_ownership_proposal,omitempty"`
	ClaimOwnership        *Empty                `json:"claim_ownership,omitempty"`
}

// ShareQuery asks for the assets backing an LP amount.
type ShareQuery struct {
	Amount math.Int `json:"amount"`
}

// SimulationQuery prices a swap of OfferAsset.
type SimulationQuery struct {
	OfferAsset   Asset      `json:"offer_asset"`
	AskAssetInfo *AssetInfo `json:"ask_asset_info,omitempty"`
}

// ReverseSimulationQuery prices the offer needed to receive AskAsset.
type ReverseSimulationQuery struct {
	AskAsset       Asset      `json:"ask_asset"`
	OfferAssetInfo *AssetInfo `json:"offer_asset_info,omitempty"`
}

// ObserveQuery reads the observation buffer SecondsAgo in the past.
type ObserveQuery struct {
	SecondsAgo uint64 `json:"seconds_ago"`
}

// AssetBalanceAtQuery reads a balance snapshot.
type AssetBalanceAtQuery struct {
	AssetInfo   AssetInfo `json:"asset_info"`
	BlockHeight uint64    `json:"block_height"`
}

// QueryMsg is the union of pair queries.
type QueryMsg struct {
	Pair              *Empty                  `json:"pair,omitempty"`
	Pool              *Empty                  `json:"pool,omitempty"`
	Share             *ShareQuery             `json:"share,omitempty"`
	Simulation        *SimulationQuery        `json:"simulation,omitempty"`
	ReverseSimulation *ReverseSimulationQuery `json:"reverse_simulation,omitempty"`
	CumulativePrices  *Empty                  `json:"cumulative_prices,omitempty"`
	Observe           *ObserveQuery           `json:"observe,omitempty"`
	AssetBalanceAt    *AssetBalanceAtQuery    `json:"asset_balance_at,omitempty"`
	Config            *Empty                  `json:"config,omitempty"`
	ComputeD          *Empty                  `json:"compute_d,omitempty"`
}
