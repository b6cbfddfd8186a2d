package types

import (
	"encoding/json"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/pcl"
)

const (
	// MaxFeeShareBps caps the fee share at 10% of the commission.
	MaxFeeShareBps = 1_000
)

var (
	// DefaultSlippage is used when a provide or swap does not set its own tolerance.
	DefaultSlippage = math.LegacyNewDecWithPrec(5, 3)
	// MaxAllowedSlippage bounds user supplied tolerances.
	MaxAllowedSlippage = math.LegacyNewDecWithPrec(5, 1)
)

// XYKPoolParams are the init params of a constant product pair.
type XYKPoolParams struct {
	TrackAssetBalances bool `json:"track_asset_balances,omitempty"`
}

// StablePoolParams are the init params of a stable pair.
type StablePoolParams struct {
	Amp                uint64 `json:"amp"`
	Owner              string `json:"owner,omitempty"`
	TrackAssetBalances bool   `json:"track_asset_balances,omitempty"`
}

// ConcentratedPoolParams are the init params of a concentrated pair. The loss guard parameters
// default to 1, which leaves the guard inactive.
type ConcentratedPoolParams struct {
	Amp                      math.LegacyDec  `json:"amp"`
	Gamma                    math.LegacyDec  `json:"gamma"`
	MidFee                   math.LegacyDec  `json:"mid_fee"`
	OutFee                   math.LegacyDec  `json:"out_fee"`
	FeeGamma                 math.LegacyDec  `json:"fee_gamma"`
	RepegProfitThreshold     math.LegacyDec  `json:"repeg_profit_threshold"`
	MinPriceScaleDelta       math.LegacyDec  `json:"min_price_scale_delta"`
	PriceScale               math.LegacyDec  `json:"price_scale"`
	MaHalfTime               uint64          `json:"ma_half_time"`
	AllowedXcpProfitDrop     *math.LegacyDec `json:"allowed_xcp_profit_drop,omitempty"`
	XcpProfitLossesThreshold *math.LegacyDec `json:"xcp_profit_losses_threshold,omitempty"`
	TrackAssetBalances       bool            `json:"track_asset_balances,omitempty"`
	FeeShare                 *FeeShareConfig `json:"fee_share,omitempty"`
}

// PoolParams extracts the tunables, applying defaults.
func (p ConcentratedPoolParams) PoolParams() pcl.PoolParams {
	params := pcl.PoolParams{
		MidFee:                   p.MidFee,
		OutFee:                   p.OutFee,
		FeeGamma:                 p.FeeGamma,
		RepegProfitThreshold:     p.RepegProfitThreshold,
		MinPriceScaleDelta:       p.MinPriceScaleDelta,
		MaHalfTime:               p.MaHalfTime,
		AllowedXcpProfitDrop:     math.LegacyOneDec(),
		XcpProfitLossesThreshold: math.LegacyOneDec(),
	}
	if p.AllowedXcpProfitDrop != nil {
		params.AllowedXcpProfitDrop = *p.AllowedXcpProfitDrop
	}
	if p.XcpProfitLossesThreshold != nil {
		params.XcpProfitLossesThreshold = *p.XcpProfitLossesThreshold
	}
	return params
}

// ValidateFeeShare checks a fee share configuration.
func ValidateFeeShare(fs *FeeShareConfig) error {
	if fs == nil {
		return nil
	}
	if fs.Bps == 0 || fs.Bps > MaxFeeShareBps {
		return ErrFeeShareBps.Wrapf("got %d", fs.Bps)
	}
	if _, err := sdk.AccAddressFromBech32(fs.Recipient); err != nil {
		return ErrInvalidAddress.Wrapf("fee share recipient: %s", err)
	}
	return nil
}

// EnableFeeShare turns the fee share on.
type EnableFeeShare struct {
	FeeShareBps     uint16 `json:"fee_share_bps"`
	FeeShareAddress string `json:"fee_share_address"`
}

// Config returns the stored form of the update.
func (e EnableFeeShare) Config() *FeeShareConfig {
	return &FeeShareConfig{Bps: e.FeeShareBps, Recipient: e.FeeShareAddress}
}

// Empty is a payload-less union member.
type Empty struct{}

// XYKPoolUpdateParams is the update_config payload of a constant product pair.
type XYKPoolUpdateParams struct {
	EnableAssetBalancesTracking *Empty          `json:"enable_asset_balances_tracking,omitempty"`
	EnableFeeShare              *EnableFeeShare `json:"enable_fee_share,omitempty"`
	DisableFeeShare             *Empty          `json:"disable_fee_share,omitempty"`
}

// StartChangingAmp schedules an amp ramp of a stable pair.
type StartChangingAmp struct {
	NextAmp     uint64 `json:"next_amp"`
	NextAmpTime uint64 `json:"next_amp_time"`
}

// StablePoolUpdateParams is the update_config payload of a stable pair.
type StablePoolUpdateParams struct {
	StartChangingAmp            *StartChangingAmp `json:"start_changing_amp,omitempty"`
	StopChangingAmp             *Empty            `json:"stop_changing_amp,omitempty"`
	EnableAssetBalancesTracking *Empty            `json:"enable_asset_balances_tracking,omitempty"`
}

// PromoteParams schedules an amp/gamma ramp of a concentrated pair.
type PromoteParams struct {
	NextAmp    math.LegacyDec `json:"next_amp"`
	NextGamma  math.LegacyDec `json:"next_gamma"`
	FutureTime uint64         `json:"future_time"`
}

// UpdateOrderbookParams changes the orderbook integration of a concentrated pair.
type UpdateOrderbookParams struct {
	Enabled        bool    `json:"enabled"`
	Subaccount     *uint32 `json:"subaccount,omitempty"`
	OrdersNumber   *uint8  `json:"orders_number,omitempty"`
	MinTradesToAvg *uint32 `json:"min_trades_to_avg,omitempty"`
}

// Apply returns o updated with the set fields.
func (u UpdateOrderbookParams) Apply(o OrderbookParams) (OrderbookParams, error) {
	o.Enabled = u.Enabled
	if u.Subaccount != nil {
		o.Subaccount = *u.Subaccount
	}
	if u.OrdersNumber != nil {
		o.OrdersNumber = *u.OrdersNumber
	}
	if u.MinTradesToAvg != nil {
		o.MinTradesToAvg = *u.MinTradesToAvg
	}
	return o, o.Validate()
}

// ConcentratedPoolUpdateParams is the update_config payload of a concentrated pair.
type ConcentratedPoolUpdateParams struct {
	Update                      *pcl.UpdatePoolParams  `json:"update,omitempty"`
	Promote                     *PromoteParams         `json:"promote,omitempty"`
	StopChangingAmpGamma        *Empty                 `json:"stop_changing_amp_gamma,omitempty"`
	EnableFeeShare              *EnableFeeShare        `json:"enable_fee_share,omitempty"`
	DisableFeeShare             *Empty                 `json:"disable_fee_share,omitempty"`
	UpdateOrderbookParams       *UpdateOrderbookParams `json:"update_orderbook_params,omitempty"`
	EnableAssetBalancesTracking *Empty                 `json:"enable_asset_balances_tracking,omitempty"`
}

// DecodeUnion unmarshals raw into v and checks that exactly one member of the union is set.
func DecodeUnion(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrInvalidMsg.Wrap(err.Error())
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return ErrInvalidMsg.Wrap(err.Error())
	}
	if len(members) != 1 {
		return ErrInvalidMsg.Wrapf("expected exactly one variant, got %d", len(members))
	}
	return nil
}
