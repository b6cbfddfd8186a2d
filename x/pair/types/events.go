package types

// Event types for the pair module
const (
	EventTypeInstantiate        = "instantiate_pair"
	EventTypeRegisterLPToken    = "register_lp_token"
	EventTypeProvideLiquidity   = "provide_liquidity"
	EventTypeWithdrawLiquidity  = "withdraw_liquidity"
	EventTypeSwap               = "swap"
	EventTypeUpdateConfig       = "update_config"
	EventTypeProposeNewOwner    = "propose_new_owner"
	EventTypeDropOwnership      = "drop_ownership_proposal"
	EventTypeClaimOwnership     = "claim_ownership"
	EventTypeRepeg              = "repeg"
	EventTypeAutoStake          = "auto_stake"
	EventTypeOrderbookReconcile = "orderbook_reconcile"
)

// Event attribute keys
const (
	AttributeKeyAction           = "action"
	AttributeKeySender           = "sender"
	AttributeKeyReceiver         = "receiver"
	AttributeKeyPair             = "pair"
	AttributeKeyPairType         = "pair_type"
	AttributeKeyLPToken          = "liquidity_token"
	AttributeKeyAssets           = "assets"
	AttributeKeyShare            = "share"
	AttributeKeyRefundAssets     = "refund_assets"
	AttributeKeyWithdrawnShare   = "withdrawn_share"
	AttributeKeyOfferAsset       = "offer_asset"
	AttributeKeyAskAsset         = "ask_asset"
	AttributeKeyOfferAmount      = "offer_amount"
	AttributeKeyReturnAmount     = "return_amount"
	AttributeKeySpreadAmount     = "spread_amount"
	AttributeKeyCommissionAmount = "commission_amount"
	AttributeKeyMakerFeeAmount   = "maker_fee_amount"
	AttributeKeyFeeShareAmount   = "fee_share_amount"
	AttributeKeyParams           = "params"
	AttributeKeyOwner            = "owner"
	AttributeKeyExpiresAt        = "expires_at"
	AttributeKeyPriceScale       = "price_scale"
	AttributeKeyXcpProfitReal    = "xcp_profit_real"
)
