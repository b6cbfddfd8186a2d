package keeper

import (
	"context"
	"encoding/json"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/fixedpoint"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/xyk"
)

// Execute dispatches a state changing message to pair. Attached funds are credited to the pair
// before the handler runs.
func (k Keeper) Execute(ctx context.Context, pair sdk.AccAddress, info types.MessageInfo, msg types.ExecuteMsg) error {
	switch {
	case msg.ProvideLiquidity != nil:
		_, err := k.ProvideLiquidity(ctx, pair, info, *msg.ProvideLiquidity)
		return err
	case msg.WithdrawLiquidity != nil:
		_, err := k.WithdrawLiquidity(ctx, pair, info, *msg.WithdrawLiquidity)
		return err
	case msg.Swap != nil:
		_, err := k.Swap(ctx, pair, info, *msg.Swap)
		return err
	case msg.Receive != nil:
		_, err := k.Receive(ctx, pair, info, *msg.Receive)
		return err
	case msg.UpdateConfig != nil:
		return k.UpdateConfig(ctx, pair, info, *msg.UpdateConfig)
	case msg.ProposeNewOwner != nil:
		return k.ProposeNewOwner(ctx, pair, info, *msg.ProposeNewOwner)
	case msg.DropOwnershipProposal != nil:
		return k.DropOwnershipProposal(ctx, pair, info)
	case msg.ClaimOwnership != nil:
		return k.ClaimOwnership(ctx, pair, info)
	default:
		return types.ErrInvalidMsg.Wrap("empty execute message")
	}
}

// ExecuteJSON decodes a JSON execute message and dispatches it.
func (k Keeper) ExecuteJSON(ctx context.Context, pair sdk.AccAddress, info types.MessageInfo, raw json.RawMessage) error {
	var msg types.ExecuteMsg
	if err := types.DecodeUnion(raw, &msg); err != nil {
		return err
	}
	return k.Execute(ctx, pair, info, msg)
}

func (k Keeper) observeLatency(action string, start time.Time) {
	k.metrics.OperationLatency.WithLabelValues(action).Observe(time.Since(start).Seconds())
}

// ProvideLiquidity deposits assets into pair and mints LP tokens to the receiver.
func (k Keeper) ProvideLiquidity(ctx context.Context, pair sdk.AccAddress, info types.MessageInfo, msg types.ProvideLiquidityMsg) (share math.Int, err error) {
	defer k.observeLatency("provide_liquidity", time.Now())
	var pairType types.PairType
	defer func() { k.countOp(pairType, "provide_liquidity", err) }()

	err = k.atomically(ctx, func(ctx sdk.Context) error {
		pc, c, err := k.loadBoundPair(ctx, pair)
		if err != nil {
			return err
		}
		pairType = pc.cfg.PairInfo.PairType
		if err := msg.ValidateBasic(); err != nil {
			return err
		}
		if err := assertFunds(msg.Assets, info.Funds); err != nil {
			return err
		}
		deposits, err := orderAssets(pc, msg.Assets)
		if err != nil {
			return err
		}
		slippage, err := slippageOrDefault(msg.SlippageTolerance)
		if err != nil {
			return err
		}
		receiver := info.Sender
		if msg.Receiver != "" {
			if receiver, err = sdk.AccAddressFromBech32(msg.Receiver); err != nil {
				return types.ErrInvalidAddress.Wrapf("receiver: %s", err)
			}
		}

		if err := k.reconcileOrderbook(pc); err != nil {
			return err
		}
		if err := k.creditFunds(ctx, pair, info); err != nil {
			return err
		}
		pools, err := k.queryPools(pc)
		if err != nil {
			return err
		}
		for i, asset := range pc.cfg.PairInfo.AssetInfos {
			if !deposits[i].IsPositive() {
				continue
			}
			if asset.IsNative() {
				pools[i] = pools[i].Sub(deposits[i])
				continue
			}
			token := sdk.MustAccAddressFromBech32(asset.Token.ContractAddr)
			if err := k.tokens.TransferFrom(ctx, token, pair, info.Sender, pair, deposits[i]); err != nil {
				return err
			}
		}

		totalShare := k.totalShare(pc)
		if totalShare.IsZero() && (deposits[0].IsZero() || deposits[1].IsZero()) {
			return types.ErrNotEnoughFirstDeposit
		}
		if err := c.accrue(pc, pools); err != nil {
			return err
		}
		if share, err = c.provide(pc, pools, deposits, totalShare, slippage); err != nil {
			return err
		}
		if msg.MinLPToReceive != nil && share.LT(*msg.MinLPToReceive) {
			return types.ErrProvideSlippage.Wrapf("received %s, minimum %s", share, msg.MinLPToReceive)
		}

		denom := pc.cfg.PairInfo.LiquidityToken
		minted := share
		if totalShare.IsZero() {
			if err := k.lp.Mint(ctx, denom, pair, xyk.MinimumLiquidityAmount); err != nil {
				return err
			}
			minted = minted.Add(xyk.MinimumLiquidityAmount)
		}
		if err := k.mintShare(pc, receiver, share, msg.AutoStake); err != nil {
			return err
		}

		after := [2]math.Int{pools[0].Add(deposits[0]), pools[1].Add(deposits[1])}
		if err := k.snapshot(pc, after); err != nil {
			return err
		}
		if err := k.placeOrders(pc, after); err != nil {
			return err
		}
		if err := k.savePair(pc); err != nil {
			return err
		}
		k.recordReserves(pc, after, totalShare.Add(minted))

		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeProvideLiquidity,
			sdk.NewAttribute(types.AttributeKeyAction, types.EventTypeProvideLiquidity),
			sdk.NewAttribute(types.AttributeKeySender, info.Sender.String()),
			sdk.NewAttribute(types.AttributeKeyReceiver, receiver.String()),
			sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
			sdk.NewAttribute(types.AttributeKeyAssets, types.FormatAssets(pairAssets(pc, deposits))),
			sdk.NewAttribute(types.AttributeKeyShare, share.String()),
		))
		k.Logger(ctx).Debug("liquidity provided", "pair", pair.String(), "deposits", types.FormatAssets(pairAssets(pc, deposits)), "share", share.String())
		return nil
	})
	if err != nil {
		return math.Int{}, err
	}
	return share, nil
}

// mintShare mints LP tokens to receiver, or stakes them for receiver.
func (k Keeper) mintShare(pc *pairContext, receiver sdk.AccAddress, share math.Int, autoStake bool) error {
	denom := pc.cfg.PairInfo.LiquidityToken
	if !autoStake {
		return k.lp.Mint(pc.ctx, denom, receiver, share)
	}
	incentives := k.factory.IncentivesAddress(pc.ctx)
	if incentives.Empty() || k.incentives == nil {
		return types.ErrInvalidParams.Wrap("auto stake is not available")
	}
	if err := k.lp.Mint(pc.ctx, denom, incentives, share); err != nil {
		return err
	}
	if err := k.incentives.Deposit(pc.ctx, denom, receiver, share); err != nil {
		return err
	}
	pc.ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventTypeAutoStake,
		sdk.NewAttribute(types.AttributeKeyPair, pc.addr.String()),
		sdk.NewAttribute(types.AttributeKeyReceiver, receiver.String()),
		sdk.NewAttribute(types.AttributeKeyShare, share.String()),
	))
	return nil
}

// WithdrawLiquidity burns the LP coins attached to the message and pays out the backing assets.
// With msg.Assets set the exact amounts are withdrawn and the unburnt LP is returned.
func (k Keeper) WithdrawLiquidity(ctx context.Context, pair sdk.AccAddress, info types.MessageInfo, msg types.WithdrawLiquidityMsg) (refunds []types.Asset, err error) {
	defer k.observeLatency("withdraw_liquidity", time.Now())
	var pairType types.PairType
	defer func() { k.countOp(pairType, "withdraw_liquidity", err) }()

	err = k.atomically(ctx, func(ctx sdk.Context) error {
		pc, c, err := k.loadBoundPair(ctx, pair)
		if err != nil {
			return err
		}
		pairType = pc.cfg.PairInfo.PairType
		denom := pc.cfg.PairInfo.LiquidityToken
		if len(info.Funds) != 1 || info.Funds[0].Denom != denom {
			return types.ErrWrongLPToken.Wrapf("expected %s, got %s", denom, info.Funds)
		}
		amount := info.Funds[0].Amount

		if err := k.reconcileOrderbook(pc); err != nil {
			return err
		}
		if err := k.creditFunds(ctx, pair, info); err != nil {
			return err
		}
		pools, err := k.queryPools(pc)
		if err != nil {
			return err
		}
		totalShare := k.totalShare(pc)

		var payout [2]math.Int
		burn := amount
		if len(msg.Assets) > 0 {
			if payout, err = orderAssets(pc, msg.Assets); err != nil {
				return err
			}
			if burn, err = c.withdrawImbalanced(pc, pools, payout, totalShare); err != nil {
				return err
			}
			if burn.GT(amount) {
				return types.ErrWithdrawSlippage.Wrapf("withdraw needs %s LP, %s attached", burn, amount)
			}
		} else {
			for i := range payout {
				if payout[i], err = fixedpoint.MultiplyRatio(pools[i], amount, totalShare); err != nil {
					return err
				}
			}
		}
		if len(msg.MinAssetsToReceive) > 0 {
			minimums, err := orderAssets(pc, msg.MinAssetsToReceive)
			if err != nil {
				return err
			}
			for i := range payout {
				if payout[i].LT(minimums[i]) {
					return types.ErrWithdrawSlippage.Wrapf("%s below minimum %s", payout[i], minimums[i])
				}
			}
		}

		if err := c.accrue(pc, pools); err != nil {
			return err
		}
		if err := k.lp.Burn(ctx, denom, pair, burn); err != nil {
			return err
		}
		if leftover := amount.Sub(burn); leftover.IsPositive() {
			if err := k.bank.SendCoins(ctx, pair, info.Sender, sdk.NewCoins(sdk.NewCoin(denom, leftover))); err != nil {
				return err
			}
		}
		for i, asset := range pc.cfg.PairInfo.AssetInfos {
			if err := k.sendAsset(pc, asset, info.Sender, payout[i]); err != nil {
				return err
			}
		}

		after := [2]math.Int{pools[0].Sub(payout[0]), pools[1].Sub(payout[1])}
		remaining := totalShare.Sub(burn)
		if err := c.afterWithdraw(pc, after, remaining); err != nil {
			return err
		}
		if err := k.snapshot(pc, after); err != nil {
			return err
		}
		if err := k.placeOrders(pc, after); err != nil {
			return err
		}
		if err := k.savePair(pc); err != nil {
			return err
		}
		k.recordReserves(pc, after, remaining)

		refunds = pairAssets(pc, payout)
		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeWithdrawLiquidity,
			sdk.NewAttribute(types.AttributeKeyAction, types.EventTypeWithdrawLiquidity),
			sdk.NewAttribute(types.AttributeKeySender, info.Sender.String()),
			sdk.NewAttribute(types.AttributeKeyReceiver, info.Sender.String()),
			sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
			sdk.NewAttribute(types.AttributeKeyWithdrawnShare, burn.String()),
			sdk.NewAttribute(types.AttributeKeyRefundAssets, types.FormatAssets(refunds)),
		))
		k.Logger(ctx).Debug("liquidity withdrawn", "pair", pair.String(), "burnt", burn.String(), "refunds", types.FormatAssets(refunds))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refunds, nil
}

// Swap sells a native offer asset. Token offers must arrive through Receive.
func (k Keeper) Swap(ctx context.Context, pair sdk.AccAddress, info types.MessageInfo, msg types.SwapMsg) (resp types.SwapResponse, err error) {
	if !msg.OfferAsset.Info.IsNative() {
		return types.SwapResponse{}, types.ErrCw20DirectSwap
	}
	if err := assertFunds([]types.Asset{msg.OfferAsset}, info.Funds); err != nil {
		return types.SwapResponse{}, err
	}
	return k.swap(ctx, pair, info, info.Sender, msg)
}

// Receive handles the hook a token contract calls after sending tokens to pair. info.Sender is
// the token contract.
func (k Keeper) Receive(ctx context.Context, pair sdk.AccAddress, info types.MessageInfo, msg types.Cw20ReceiveMsg) (types.SwapResponse, error) {
	if !info.Funds.IsZero() {
		return types.SwapResponse{}, types.ErrFundsMismatch.Wrap("token hooks carry no native funds")
	}
	var hook types.Cw20HookMsg
	if err := types.DecodeUnion(msg.Msg, &hook); err != nil {
		return types.SwapResponse{}, err
	}
	if hook.Swap == nil {
		return types.SwapResponse{}, types.ErrInvalidMsg.Wrap("unknown token hook")
	}
	sender, err := sdk.AccAddressFromBech32(msg.Sender)
	if err != nil {
		return types.SwapResponse{}, types.ErrInvalidAddress.Wrapf("sender: %s", err)
	}
	swap := types.SwapMsg{
		OfferAsset:   types.NewAsset(types.TokenAsset(info.Sender.String()), msg.Amount),
		AskAssetInfo: hook.Swap.AskAssetInfo,
		BeliefPrice:  hook.Swap.BeliefPrice,
		MaxSpread:    hook.Swap.MaxSpread,
		To:           hook.Swap.To,
	}
	return k.swap(ctx, pair, types.MessageInfo{Sender: sender}, sender, swap)
}

// swap runs a swap whose offer already sits in the pair's balance.
func (k Keeper) swap(ctx context.Context, pair sdk.AccAddress, info types.MessageInfo, trader sdk.AccAddress, msg types.SwapMsg) (resp types.SwapResponse, err error) {
	defer k.observeLatency("swap", time.Now())
	var pairType types.PairType
	defer func() { k.countOp(pairType, "swap", err) }()
	if err := msg.ValidateBasic(); err != nil {
		return types.SwapResponse{}, err
	}

	err = k.atomically(ctx, func(ctx sdk.Context) error {
		pc, c, err := k.loadBoundPair(ctx, pair)
		if err != nil {
			return err
		}
		pairType = pc.cfg.PairInfo.PairType
		offerIdx, err := pc.cfg.PairInfo.AssetIndex(msg.OfferAsset.Info)
		if err != nil {
			return err
		}
		askIdx := 1 - offerIdx
		askInfo := pc.cfg.PairInfo.AssetInfos[askIdx]
		if msg.AskAssetInfo != nil && !msg.AskAssetInfo.Equal(askInfo) {
			return types.ErrAssetMismatch.Wrapf("ask asset %s", msg.AskAssetInfo)
		}
		receiver := trader
		if msg.To != "" {
			if receiver, err = sdk.AccAddressFromBech32(msg.To); err != nil {
				return types.ErrInvalidAddress.Wrapf("to: %s", err)
			}
		}

		if err := k.reconcileOrderbook(pc); err != nil {
			return err
		}
		if err := k.creditFunds(ctx, pair, info); err != nil {
			return err
		}
		pools, err := k.queryPools(pc)
		if err != nil {
			return err
		}
		offer := msg.OfferAsset.Amount
		if pools[offerIdx].LT(offer) {
			return types.ErrFundsMismatch.Wrapf("offer %s was not received", msg.OfferAsset)
		}
		pools[offerIdx] = pools[offerIdx].Sub(offer)

		if err := c.accrue(pc, pools); err != nil {
			return err
		}
		out, err := c.simulate(pc, pools, offerIdx, offer)
		if err != nil {
			return err
		}
		if err := assertMaxSpread(msg.BeliefPrice, msg.MaxSpread, offer, out.ReturnAmount.Add(out.CommissionAmount), out.SpreadAmount); err != nil {
			return err
		}

		if err := k.sendAsset(pc, askInfo, receiver, out.ReturnAmount); err != nil {
			return err
		}
		if out.MakerFeeAmount.IsPositive() {
			feeAddr, err := sdk.AccAddressFromBech32(pc.fees.FeeAddress)
			if err != nil {
				return types.ErrInvalidAddress.Wrapf("fee address: %s", err)
			}
			if err := k.sendAsset(pc, askInfo, feeAddr, out.MakerFeeAmount); err != nil {
				return err
			}
		}
		if out.FeeShareAmount.IsPositive() {
			recipient, err := sdk.AccAddressFromBech32(pc.cfg.FeeShare.Recipient)
			if err != nil {
				return types.ErrInvalidAddress.Wrapf("fee share recipient: %s", err)
			}
			if err := k.sendAsset(pc, askInfo, recipient, out.FeeShareAmount); err != nil {
				return err
			}
		}

		totalShare := k.totalShare(pc)
		if err := c.afterSwap(pc, pools, offerIdx, offer, out, totalShare); err != nil {
			return err
		}
		after := pools
		after[offerIdx] = pools[offerIdx].Add(offer)
		after[askIdx] = pools[askIdx].Sub(out.ReturnAmount).Sub(out.MakerFeeAmount).Sub(out.FeeShareAmount)
		if err := k.snapshot(pc, after); err != nil {
			return err
		}
		if err := k.placeOrders(pc, after); err != nil {
			return err
		}
		if err := k.savePair(pc); err != nil {
			return err
		}
		k.recordReserves(pc, after, totalShare)
		resp = out.SwapResponse

		f, _ := math.LegacyNewDecFromInt(offer).Float64()
		k.metrics.SwapVolume.WithLabelValues(pair.String(), msg.OfferAsset.Info.String()).Add(f)
		f, _ = math.LegacyNewDecFromInt(out.CommissionAmount).Float64()
		k.metrics.CommissionTotal.WithLabelValues(pair.String(), askInfo.String()).Add(f)

		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeSwap,
			sdk.NewAttribute(types.AttributeKeyAction, types.EventTypeSwap),
			sdk.NewAttribute(types.AttributeKeySender, trader.String()),
			sdk.NewAttribute(types.AttributeKeyReceiver, receiver.String()),
			sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
			sdk.NewAttribute(types.AttributeKeyOfferAsset, msg.OfferAsset.Info.String()),
			sdk.NewAttribute(types.AttributeKeyAskAsset, askInfo.String()),
			sdk.NewAttribute(types.AttributeKeyOfferAmount, offer.String()),
			sdk.NewAttribute(types.AttributeKeyReturnAmount, out.ReturnAmount.String()),
			sdk.NewAttribute(types.AttributeKeySpreadAmount, out.SpreadAmount.String()),
			sdk.NewAttribute(types.AttributeKeyCommissionAmount, out.CommissionAmount.String()),
			sdk.NewAttribute(types.AttributeKeyMakerFeeAmount, out.MakerFeeAmount.String()),
			sdk.NewAttribute(types.AttributeKeyFeeShareAmount, out.FeeShareAmount.String()),
		))
		k.Logger(ctx).Debug("swap executed", "pair", pair.String(), "offer", msg.OfferAsset.String(), "return", out.ReturnAmount.String())
		return nil
	})
	if err != nil {
		return types.SwapResponse{}, err
	}
	return resp, nil
}

// UpdateConfig applies a flavor specific update. Only the pair owner, or the factory owner when
// the pair has none, may update.
func (k Keeper) UpdateConfig(ctx context.Context, pair sdk.AccAddress, info types.MessageInfo, msg types.UpdateConfigMsg) (err error) {
	var pairType types.PairType
	defer func() { k.countOp(pairType, "update_config", err) }()
	return k.atomically(ctx, func(ctx sdk.Context) error {
		pc, c, err := k.loadPair(ctx, pair)
		if err != nil {
			return err
		}
		pairType = pc.cfg.PairInfo.PairType
		if err := k.assertOwner(pc, info.Sender); err != nil {
			return err
		}
		if err := c.updateConfig(pc, msg.Params); err != nil {
			return err
		}
		if err := k.savePair(pc); err != nil {
			return err
		}
		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeUpdateConfig,
			sdk.NewAttribute(types.AttributeKeyAction, types.EventTypeUpdateConfig),
			sdk.NewAttribute(types.AttributeKeySender, info.Sender.String()),
			sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
			sdk.NewAttribute(types.AttributeKeyParams, string(msg.Params)),
		))
		k.Logger(ctx).Info("pair config updated", "pair", pair.String(), "params", string(msg.Params))
		return nil
	})
}
