package types

import (
	"cosmossdk.io/math"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/oracle"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/pcl"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/stableswap"
)

// PairType selects the pricing curve of a pair.
type PairType string

const (
	PairTypeXYK          PairType = "xyk"
	PairTypeStable       PairType = "stable"
	PairTypeConcentrated PairType = "concentrated"
)

// Validate rejects unknown pair types.
func (t PairType) Validate() error {
	switch t {
	case PairTypeXYK, PairTypeStable, PairTypeConcentrated:
		return nil
	default:
		return ErrInvalidParams.Wrapf("unknown pair type %q", string(t))
	}
}

// PairInfo is the public identity of a pair. LiquidityToken is empty until the LP token is bound.
type PairInfo struct {
	AssetInfos     [2]AssetInfo `json:"asset_infos"`
	ContractAddr   string       `json:"contract_addr"`
	LiquidityToken string       `json:"liquidity_token"`
	PairType       PairType     `json:"pair_type"`
}

// AssetIndex returns the position of info in the pair.
func (p PairInfo) AssetIndex(info AssetInfo) (int, error) {
	for i, a := range p.AssetInfos {
		if a.Equal(info) {
			return i, nil
		}
	}
	return 0, ErrAssetMismatch.Wrapf("%s is not in pair %s", info, p.ContractAddr)
}

// FeeShareConfig forwards a share of every swap commission to Recipient.
type FeeShareConfig struct {
	Bps       uint16 `json:"bps"`
	Recipient string `json:"recipient"`
}

// Rate is the fee share as a fraction of the commission.
func (f *FeeShareConfig) Rate() math.LegacyDec {
	if f == nil {
		return math.LegacyZeroDec()
	}
	return math.LegacyNewDec(int64(f.Bps)).QuoInt64(10_000)
}

// StableState is the amplification schedule of a stable pair.
type StableState struct {
	stableswap.AmpRamp
}

// ConcentratedState is the curve state and tunables of a concentrated pair.
type ConcentratedState struct {
	PoolState pcl.PoolState   `json:"pool_state"`
	Params    pcl.PoolParams  `json:"params"`
	Orderbook OrderbookParams `json:"orderbook"`
}

// OrderbookParams configure the optional external orderbook integration of a concentrated pair.
type OrderbookParams struct {
	Enabled        bool   `json:"enabled"`
	Subaccount     uint32 `json:"subaccount"`
	OrdersNumber   uint8  `json:"orders_number"`
	MinTradesToAvg uint32 `json:"min_trades_to_avg"`
}

const (
	MinOrdersNumber = 1
	MaxOrdersNumber = 10
)

// Validate checks the orderbook bounds. Disabled integrations are not checked.
func (o OrderbookParams) Validate() error {
	if !o.Enabled {
		return nil
	}
	if o.OrdersNumber < MinOrdersNumber || o.OrdersNumber > MaxOrdersNumber {
		return ErrInvalidOrderbookParams.Wrapf("orders_number must be in [%d, %d]", MinOrdersNumber, MaxOrdersNumber)
	}
	if o.MinTradesToAvg < 1 || o.MinTradesToAvg > oracle.ObservationsSize {
		return ErrInvalidOrderbookParams.Wrapf("min_trades_to_avg must be in [1, %d]", oracle.ObservationsSize)
	}
	return nil
}

// Config is the persisted state of a pair apart from its reserves, which live in the pair account.
type Config struct {
	ID                 uint64             `json:"id"`
	PairInfo           PairInfo           `json:"pair_info"`
	FactoryAddr        string             `json:"factory_addr"`
	Owner              string             `json:"owner,omitempty"`
	BlockTimeLast      uint64             `json:"block_time_last"`
	TrackAssetBalances bool               `json:"track_asset_balances"`
	FeeShare           *FeeShareConfig    `json:"fee_share,omitempty"`
	Stable             *StableState       `json:"stable,omitempty"`
	Concentrated       *ConcentratedState `json:"concentrated,omitempty"`
}

// LPBound reports whether the LP token was bound to the pair.
func (c Config) LPBound() bool {
	return c.PairInfo.LiquidityToken != ""
}

// CumulativePrice is the accumulated price of From expressed in To.
type CumulativePrice struct {
	From  AssetInfo `json:"from"`
	To    AssetInfo `json:"to"`
	Value math.Int  `json:"value"`
}

// OwnershipProposal is a pending transfer of pair ownership.
type OwnershipProposal struct {
	Owner     string `json:"owner"`
	ExpiresAt uint64 `json:"expires_at"`
}

// MaxProposalTTL bounds expires_in of an ownership proposal.
const MaxProposalTTL uint64 = 1_209_600
