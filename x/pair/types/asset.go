package types

import (
	"fmt"
	"sort"
	"strings"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// DenomMaxLength bounds native denoms accepted by a pair.
const DenomMaxLength = 128

// TokenInfo identifies a CW20-style token by its contract address.
type TokenInfo struct {
	ContractAddr string `json:"contract_addr"`
}

// NativeTokenInfo identifies a bank coin.
type NativeTokenInfo struct {
	Denom string `json:"denom"`
}

// AssetInfo is either a token or a native coin. Exactly one field is set.
type AssetInfo struct {
	Token       *TokenInfo       `json:"token,omitempty"`
	NativeToken *NativeTokenInfo `json:"native_token,omitempty"`
}

// NativeAsset returns the info of a bank coin.
func NativeAsset(denom string) AssetInfo {
	return AssetInfo{NativeToken: &NativeTokenInfo{Denom: denom}}
}

// TokenAsset returns the info of a token contract.
func TokenAsset(addr string) AssetInfo {
	return AssetInfo{Token: &TokenInfo{ContractAddr: addr}}
}

// IsNative reports whether the asset is a bank coin.
func (a AssetInfo) IsNative() bool {
	return a.NativeToken != nil
}

// String returns the denom or the contract address.
func (a AssetInfo) String() string {
	switch {
	case a.NativeToken != nil:
		return a.NativeToken.Denom
	case a.Token != nil:
		return a.Token.ContractAddr
	default:
		return ""
	}
}

// Equal compares two infos structurally.
func (a AssetInfo) Equal(b AssetInfo) bool {
	return a.IsNative() == b.IsNative() && a.String() == b.String()
}

// Less orders natives before tokens, then lexicographically.
func (a AssetInfo) Less(b AssetInfo) bool {
	if a.IsNative() != b.IsNative() {
		return a.IsNative()
	}
	return a.String() < b.String()
}

func (a AssetInfo) key() []byte {
	if a.IsNative() {
		return append([]byte{0}, a.String()...)
	}
	return append([]byte{1}, a.String()...)
}

// Validate checks the variant and the denom or address format.
func (a AssetInfo) Validate() error {
	switch {
	case a.NativeToken != nil && a.Token != nil:
		return ErrInvalidAsset.Wrap("asset info must set exactly one of token and native_token")
	case a.NativeToken != nil:
		denom := a.NativeToken.Denom
		if len(denom) > DenomMaxLength {
			return ErrInvalidAsset.Wrapf("denom %q exceeds %d characters", denom, DenomMaxLength)
		}
		if err := sdk.ValidateDenom(denom); err != nil {
			return ErrInvalidAsset.Wrap(err.Error())
		}
	case a.Token != nil:
		if _, err := sdk.AccAddressFromBech32(a.Token.ContractAddr); err != nil {
			return ErrInvalidAsset.Wrapf("token %q: %s", a.Token.ContractAddr, err)
		}
	default:
		return ErrInvalidAsset.Wrap("empty asset info")
	}
	return nil
}

// Asset is an amount of an asset in its smallest unit.
type Asset struct {
	Info   AssetInfo `json:"info"`
	Amount math.Int  `json:"amount"`
}

// NewAsset returns an asset of amount units of info.
func NewAsset(info AssetInfo, amount math.Int) Asset {
	return Asset{Info: info, Amount: amount}
}

func (a Asset) String() string {
	return fmt.Sprintf("%s%s", a.Amount, a.Info)
}

// Coin converts a native asset to a bank coin.
func (a Asset) Coin() (sdk.Coin, error) {
	if !a.Info.IsNative() {
		return sdk.Coin{}, ErrInvalidAsset.Wrapf("%s is not a native coin", a.Info)
	}
	return sdk.NewCoin(a.Info.NativeToken.Denom, a.Amount), nil
}

// FormatAssets renders assets as a comma separated event attribute.
func FormatAssets(assets []Asset) string {
	parts := make([]string, len(assets))
	for i, a := range assets {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// ValidatePairAssets checks that infos are two valid and distinct assets.
func ValidatePairAssets(infos []AssetInfo) error {
	if len(infos) != 2 {
		return ErrInvalidNumberOfAssets.Wrapf("got %d", len(infos))
	}
	for _, info := range infos {
		if err := info.Validate(); err != nil {
			return err
		}
	}
	if infos[0].Equal(infos[1]) {
		return ErrDoublingAssets
	}
	return nil
}

// SortAssetInfos returns infos in canonical order.
func SortAssetInfos(infos []AssetInfo) [2]AssetInfo {
	sorted := append([]AssetInfo{}, infos...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	return [2]AssetInfo{sorted[0], sorted[1]}
}
