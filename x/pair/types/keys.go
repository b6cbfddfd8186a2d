package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
)

const (
	// ModuleName defines the module name
	ModuleName = "pair"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// LPSubdenom is the subdenom of every pair's LP token.
	LPSubdenom = "astroport/share"
)

// Store key prefixes
var (
	PairCountKey              = []byte{0x01} // next pair id
	ConfigKeyPrefix           = []byte{0x02} // pair address -> Config
	PrecisionsKeyPrefix       = []byte{0x03} // pair address -> asset precisions
	CumulativePricesKeyPrefix = []byte{0x04} // pair address -> cumulative prices
	ObservationsKeyPrefix     = []byte{0x05} // pair address -> observation ring buffer
	BalanceHistoryKeyPrefix   = []byte{0x06} // pair address | asset | height -> reserve
	OwnershipKeyPrefix        = []byte{0x07} // pair address -> ownership proposal
	LPDenomIndexKeyPrefix     = []byte{0x08} // LP denom -> pair address
)

// PairAddress derives the account of pair id.
func PairAddress(id uint64) sdk.AccAddress {
	return address.Module(ModuleName, sdk.Uint64ToBigEndian(id))
}

func addressKey(prefix []byte, addr sdk.AccAddress) []byte {
	key := make([]byte, 0, len(prefix)+1+len(addr))
	key = append(key, prefix...)
	return append(key, address.MustLengthPrefix(addr)...)
}

// ConfigKey returns the store key of a pair's config
func ConfigKey(pair sdk.AccAddress) []byte {
	return addressKey(ConfigKeyPrefix, pair)
}

// PrecisionsKey returns the store key of a pair's asset precisions
func PrecisionsKey(pair sdk.AccAddress) []byte {
	return addressKey(PrecisionsKeyPrefix, pair)
}

// CumulativePricesKey returns the store key of a pair's cumulative prices
func CumulativePricesKey(pair sdk.AccAddress) []byte {
	return addressKey(CumulativePricesKeyPrefix, pair)
}

// ObservationsPrefix returns the prefix under which a pair's observations live
func ObservationsPrefix(pair sdk.AccAddress) []byte {
	return addressKey(ObservationsKeyPrefix, pair)
}

// OwnershipKey returns the store key of a pair's pending ownership proposal
func OwnershipKey(pair sdk.AccAddress) []byte {
	return addressKey(OwnershipKeyPrefix, pair)
}

// BalanceHistoryPrefix returns the prefix of the snapshots of one asset of a pair. Heights are
// appended big endian so iteration follows block order.
func BalanceHistoryPrefix(pair sdk.AccAddress, info AssetInfo) []byte {
	key := addressKey(BalanceHistoryKeyPrefix, pair)
	id := info.key()
	key = append(key, byte(len(id)))
	return append(key, id...)
}

// HeightKey encodes a block height for a balance history prefix store.
func HeightKey(height uint64) []byte {
	return sdk.Uint64ToBigEndian(height)
}

// LPDenomIndexKey returns the index key of an LP denom
func LPDenomIndexKey(denom string) []byte {
	return append(append([]byte{}, LPDenomIndexKeyPrefix...), []byte(denom)...)
}

// LPDenom is the bank denom of the LP token of a pair.
func LPDenom(pair sdk.AccAddress) string {
	return "factory/" + pair.String() + "/" + LPSubdenom
}
