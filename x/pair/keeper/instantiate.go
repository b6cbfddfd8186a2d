package keeper

import (
	"context"
	"encoding/json"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/pcl"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/stableswap"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

// Instantiate creates a pair and requests its LP token. The pair accepts liquidity once the token
// is bound, which happens here when the backend replies synchronously and in HandleLPTokenReply
// otherwise.
func (k Keeper) Instantiate(ctx context.Context, info types.MessageInfo, msg types.InstantiateMsg) (pair sdk.AccAddress, err error) {
	defer func() { k.countOp(msg.PairType, "instantiate", err) }()
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	err = k.atomically(ctx, func(ctx sdk.Context) error {
		infos := types.SortAssetInfos(msg.AssetInfos)
		precisions, err := k.assetPrecisions(ctx, infos)
		if err != nil {
			return err
		}

		id := k.nextPairID(ctx)
		pair = types.PairAddress(id)
		now := blockTime(ctx)
		cfg := types.Config{
			ID: id,
			PairInfo: types.PairInfo{
				AssetInfos:   infos,
				ContractAddr: pair.String(),
				PairType:     msg.PairType,
			},
			FactoryAddr:   msg.FactoryAddr,
			BlockTimeLast: now,
		}
		if err := applyInitParams(&cfg, msg.InitParams, now); err != nil {
			return err
		}

		if err := k.SetConfig(ctx, pair, cfg); err != nil {
			return err
		}
		if err := k.setPrecisions(ctx, pair, precisions); err != nil {
			return err
		}
		if msg.PairType != types.PairTypeConcentrated {
			if err := k.setCumulativePrices(ctx, pair, initialCumulativePrices(infos)); err != nil {
				return err
			}
		}

		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeInstantiate,
			sdk.NewAttribute(types.AttributeKeySender, info.Sender.String()),
			sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
			sdk.NewAttribute(types.AttributeKeyPairType, string(msg.PairType)),
			sdk.NewAttribute(types.AttributeKeyAssets, infos[0].String()+", "+infos[1].String()),
		))

		reply, err := k.lp.CreateToken(ctx, pair)
		if err != nil {
			return err
		}
		if reply != nil {
			return k.bindLPToken(ctx, pair, *reply)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	k.metrics.PairsTotal.Inc()
	k.Logger(ctx).Info("pair instantiated", "pair", pair.String(), "type", string(msg.PairType))
	return pair, nil
}

// HandleLPTokenReply binds the LP token created for pair. A pair is bound exactly once.
func (k Keeper) HandleLPTokenReply(ctx context.Context, pair sdk.AccAddress, reply types.LPTokenReply) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		return k.bindLPToken(ctx, pair, reply)
	})
}

func (k Keeper) bindLPToken(ctx sdk.Context, pair sdk.AccAddress, reply types.LPTokenReply) error {
	cfg, err := k.GetConfig(ctx, pair)
	if err != nil {
		return err
	}
	if cfg.LPBound() {
		return types.ErrLPTokenAlreadySet.Wrap(cfg.PairInfo.LiquidityToken)
	}
	if err := sdk.ValidateDenom(reply.Denom); err != nil {
		return types.ErrInvalidAsset.Wrapf("lp token: %s", err)
	}
	cfg.PairInfo.LiquidityToken = reply.Denom
	if err := k.SetConfig(ctx, pair, cfg); err != nil {
		return err
	}
	k.getStore(ctx).Set(types.LPDenomIndexKey(reply.Denom), pair)

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeRegisterLPToken,
		sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
		sdk.NewAttribute(types.AttributeKeyLPToken, reply.Denom),
	))
	k.Logger(ctx).Info("lp token bound", "pair", pair.String(), "denom", reply.Denom)
	return nil
}

// assetPrecisions resolves the decimals of both assets.
func (k Keeper) assetPrecisions(ctx sdk.Context, infos [2]types.AssetInfo) ([2]uint8, error) {
	var precisions [2]uint8
	for i, info := range infos {
		var p uint8
		if info.IsNative() {
			var found bool
			p, found = k.registry.NativePrecision(ctx, info.NativeToken.Denom)
			if !found {
				return precisions, types.ErrInvalidAsset.Wrapf("%s is not registered in the coin registry", info)
			}
		} else {
			token, err := sdk.AccAddressFromBech32(info.Token.ContractAddr)
			if err != nil {
				return precisions, types.ErrInvalidAsset.Wrap(err.Error())
			}
			if p, err = k.tokens.Decimals(ctx, token); err != nil {
				return precisions, err
			}
		}
		if err := fixedpoint.ValidatePrecision(p); err != nil {
			return precisions, err
		}
		precisions[i] = p
	}
	return precisions, nil
}

// applyInitParams decodes the flavor specific init params into cfg.
func applyInitParams(cfg *types.Config, raw json.RawMessage, now uint64) error {
	switch cfg.PairInfo.PairType {
	case types.PairTypeXYK:
		var p types.XYKPoolParams
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &p); err != nil {
				return types.ErrInvalidParams.Wrap(err.Error())
			}
		}
		cfg.TrackAssetBalances = p.TrackAssetBalances

	case types.PairTypeStable:
		if len(raw) == 0 {
			return types.ErrInvalidParams.Wrap("stable pairs require init params")
		}
		var p types.StablePoolParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return types.ErrInvalidParams.Wrap(err.Error())
		}
		ramp, err := stableswap.NewAmpRamp(p.Amp, now)
		if err != nil {
			return err
		}
		if p.Owner != "" {
			if _, err := sdk.AccAddressFromBech32(p.Owner); err != nil {
				return types.ErrInvalidAddress.Wrapf("owner: %s", err)
			}
		}
		cfg.Owner = p.Owner
		cfg.TrackAssetBalances = p.TrackAssetBalances
		cfg.Stable = &types.StableState{AmpRamp: ramp}

	case types.PairTypeConcentrated:
		if len(raw) == 0 {
			return types.ErrInvalidParams.Wrap("concentrated pairs require init params")
		}
		var p types.ConcentratedPoolParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return types.ErrInvalidParams.Wrap(err.Error())
		}
		ag, err := pcl.NewAmpGamma(p.Amp, p.Gamma)
		if err != nil {
			return err
		}
		params := p.PoolParams()
		if err := params.Validate(); err != nil {
			return err
		}
		state, err := pcl.NewPoolState(ag, p.PriceScale, now)
		if err != nil {
			return err
		}
		if err := types.ValidateFeeShare(p.FeeShare); err != nil {
			return err
		}
		cfg.TrackAssetBalances = p.TrackAssetBalances
		cfg.FeeShare = p.FeeShare
		cfg.Concentrated = &types.ConcentratedState{PoolState: state, Params: params}

	default:
		return types.ErrInvalidParams.Wrapf("unknown pair type %q", string(cfg.PairInfo.PairType))
	}
	return nil
}
