package types

import (
	"cosmossdk.io/errors"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/oracle"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/pcl"
)

// Pair module sentinel errors
var (
	ErrUnauthorized             = errors.Register(ModuleName, 2, "Unauthorized")
	ErrInvalidZeroAmount        = errors.Register(ModuleName, 3, "Event of zero transfer")
	ErrMaxSlippageAssertion     = errors.Register(ModuleName, 4, "Operation exceeds max slippage tolerance")
	ErrAllowedSpreadAssertion   = errors.Register(ModuleName, 5, "Allowed spread must be less than or equal to the max allowed spread")
	ErrMaxSpreadAssertion       = errors.Register(ModuleName, 6, "Operation exceeds max spread limit")
	ErrPairIsNotRegistered      = errors.Register(ModuleName, 7, "Pair is not registered")
	ErrAssetMismatch            = errors.Register(ModuleName, 8, "Provided asset does not belong to the pair")
	ErrCw20DirectSwap           = errors.Register(ModuleName, 9, "Cw20 tokens must be swapped via the token's send hook")
	ErrInvalidNumberOfAssets    = errors.Register(ModuleName, 10, "The pair must have exactly two assets")
	ErrInvalidAsset             = errors.Register(ModuleName, 11, "invalid asset")
	ErrDoublingAssets           = errors.Register(ModuleName, 12, "Doubling assets in asset infos")
	ErrPairNotFound             = errors.Register(ModuleName, 13, "pair not found")
	ErrLPTokenAlreadySet        = errors.Register(ModuleName, 14, "LP token is already set")
	ErrFundsMismatch            = errors.Register(ModuleName, 15, "Native token balance mismatch between the argument and the transferred")
	ErrProvideSlippage          = errors.Register(ModuleName, 16, "Slippage is more than expected: received LP is lower than minimum")
	ErrWithdrawSlippage         = errors.Register(ModuleName, 17, "Withdraw slippage violation: refund is lower than expected")
	ErrImbalancedWithdraw       = errors.Register(ModuleName, 18, "Imbalanced withdraw is currently disabled")
	ErrFeeShareBps              = errors.Register(ModuleName, 19, "Fee share bps must be in range (0, 1000]")
	ErrTrackingAlreadyEnabled   = errors.Register(ModuleName, 20, "Asset balances tracking is already enabled")
	ErrOwnershipProposalExpired = errors.Register(ModuleName, 21, "Ownership proposal expired")
	ErrOwnershipTTL             = errors.Register(ModuleName, 22, "Parameter expires_in cannot be higher than the maximum")
	ErrNoOwnershipProposal      = errors.Register(ModuleName, 23, "Ownership proposal not found")
	ErrSameOwner                = errors.Register(ModuleName, 24, "New owner cannot be the same as the current one")
	ErrNotSupported             = errors.Register(ModuleName, 25, "Operation is not supported by this pair type")
	ErrInvalidParams            = errors.Register(ModuleName, 26, "invalid pair parameters")
	ErrInvalidAddress           = errors.Register(ModuleName, 27, "invalid address")
	ErrInvalidMsg               = errors.Register(ModuleName, 28, "invalid message")
	ErrNotEnoughFirstDeposit    = errors.Register(ModuleName, 29, "Both assets are required for the first provide")
	ErrInvalidOrderbookParams   = errors.Register(ModuleName, 30, "invalid orderbook parameters")
	ErrLPTokenPending           = errors.Register(ModuleName, 31, "LP token is not bound to the pair yet")
	ErrWrongLPToken             = errors.Register(ModuleName, 32, "Only the pair's LP token can be burned for a withdrawal")
)

// Numeric and oracle errors of the kernels, surfaced unchanged.
var (
	ErrMinimumLiquidityAmount   = fixedpoint.ErrMinimumLiquidity
	ErrIncorrectAmp             = fixedpoint.ErrIncorrectAmp
	ErrMaxAmpChangeAssertion    = fixedpoint.ErrMaxAmpChange
	ErrMinAmpChangingTime       = fixedpoint.ErrMinAmpChangingTime
	ErrEmptyPool                = fixedpoint.ErrEmptyPool
	ErrSwapZeroAmount           = fixedpoint.ErrZeroAmount
	ErrNotEnoughLiquidity       = fixedpoint.ErrNotEnoughLiquidity
	ErrXcpProfitDropped         = pcl.ErrXcpProfitDropped
	ErrLossLimitReached         = pcl.ErrLossLimitReached
	ErrObservationTooOld        = oracle.ErrObservationTooOld
	ErrObservationBufferIsEmpty = oracle.ErrBufferEmpty
)
