package types

import (
	"encoding/json"

	"cosmossdk.io/math"
)

// PoolResponse lists the reserves and the LP supply of a pair.
type PoolResponse struct {
	Assets     [2]Asset `json:"assets"`
	TotalShare math.Int `json:"total_share"`
}

// SimulationResponse is the outcome of a simulated swap, in units of the ask asset.
type SimulationResponse struct {
	ReturnAmount     math.Int `json:"return_amount"`
	SpreadAmount     math.Int `json:"spread_amount"`
	CommissionAmount math.Int `json:"commission_amount"`
}

// ReverseSimulationResponse is the offer needed for a desired return.
type ReverseSimulationResponse struct {
	OfferAmount      math.Int `json:"offer_amount"`
	SpreadAmount     math.Int `json:"spread_amount"`
	CommissionAmount math.Int `json:"commission_amount"`
}

// SwapResponse is the outcome of an executed swap.
type SwapResponse struct {
	ReturnAmount     math.Int `json:"return_amount"`
	SpreadAmount     math.Int `json:"spread_amount"`
	CommissionAmount math.Int `json:"commission_amount"`
	MakerFeeAmount   math.Int `json:"maker_fee_amount"`
	FeeShareAmount   math.Int `json:"fee_share_amount"`
}

// CumulativePricesResponse is the pool state with its accumulators ticked to the current block.
type CumulativePricesResponse struct {
	Assets           [2]Asset          `json:"assets"`
	TotalShare       math.Int          `json:"total_share"`
	CumulativePrices []CumulativePrice `json:"cumulative_prices"`
}

// ObservationResponse is a point of the observation buffer.
type ObservationResponse struct {
	Timestamp uint64         `json:"timestamp"`
	Price     math.LegacyDec `json:"price"`
	PriceSMA  math.LegacyDec `json:"price_sma"`
}

// ConfigResponse is the public configuration of a pair.
type ConfigResponse struct {
	BlockTimeLast uint64          `json:"block_time_last"`
	Params        json.RawMessage `json:"params,omitempty"`
	Owner         string          `json:"owner"`
	FactoryAddr   string          `json:"factory_addr"`
}

// StableParamsResponse is the params field of a stable pair's config.
type StableParamsResponse struct {
	Amp       math.LegacyDec `json:"amp"`
	FutureAmp math.LegacyDec `json:"future_amp"`
	IsRamping bool           `json:"is_ramping"`
}

// ConcentratedParamsResponse is the params field of a concentrated pair's config.
type ConcentratedParamsResponse struct {
	Amp        math.LegacyDec  `json:"amp"`
	Gamma      math.LegacyDec  `json:"gamma"`
	Params     json.RawMessage `json:"params"`
	PriceState json.RawMessage `json:"price_state"`
	FeeShare   *FeeShareConfig `json:"fee_share,omitempty"`
	Orderbook  OrderbookParams `json:"orderbook"`
}
