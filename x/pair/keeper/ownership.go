package keeper

import (
	"context"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

// owner is the account allowed to administer the pair.
func (k Keeper) owner(ctx sdk.Context, cfg *types.Config) sdk.AccAddress {
	if cfg.Owner != "" {
		return sdk.MustAccAddressFromBech32(cfg.Owner)
	}
	return k.factory.Owner(ctx)
}

func (k Keeper) assertOwner(pc *pairContext, sender sdk.AccAddress) error {
	owner := k.owner(pc.ctx, pc.cfg)
	if owner.Empty() || !owner.Equals(sender) {
		return types.ErrUnauthorized.Wrapf("%s is not the pair owner", sender)
	}
	return nil
}

// ProposeNewOwner starts a two step ownership transfer that expires after msg.ExpiresIn seconds.
func (k Keeper) ProposeNewOwner(ctx context.Context, pair sdk.AccAddress, info types.MessageInfo, msg types.ProposeNewOwnerMsg) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		pc, _, err := k.loadPair(ctx, pair)
		if err != nil {
			return err
		}
		if err := k.assertOwner(pc, info.Sender); err != nil {
			return err
		}
		proposed, err := sdk.AccAddressFromBech32(msg.Owner)
		if err != nil {
			return types.ErrInvalidAddress.Wrapf("owner: %s", err)
		}
		if proposed.Equals(k.owner(ctx, pc.cfg)) {
			return types.ErrSameOwner
		}
		if msg.ExpiresIn > types.MaxProposalTTL {
			return types.ErrOwnershipTTL.Wrapf("%d > %d", msg.ExpiresIn, types.MaxProposalTTL)
		}
		proposal := types.OwnershipProposal{Owner: msg.Owner, ExpiresAt: pc.now + msg.ExpiresIn}
		if err := k.setOwnershipProposal(ctx, pair, proposal); err != nil {
			return err
		}
		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeProposeNewOwner,
			sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
			sdk.NewAttribute(types.AttributeKeyOwner, msg.Owner),
			sdk.NewAttribute(types.AttributeKeyExpiresAt, strconv.FormatUint(proposal.ExpiresAt, 10)),
		))
		return nil
	})
}

// DropOwnershipProposal removes a pending proposal.
func (k Keeper) DropOwnershipProposal(ctx context.Context, pair sdk.AccAddress, info types.MessageInfo) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		pc, _, err := k.loadPair(ctx, pair)
		if err != nil {
			return err
		}
		if err := k.assertOwner(pc, info.Sender); err != nil {
			return err
		}
		k.deleteOwnershipProposal(ctx, pair)
		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeDropOwnership,
			sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
		))
		return nil
	})
}

// ClaimOwnership completes a transfer. Only the proposed owner may claim, before expiry.
func (k Keeper) ClaimOwnership(ctx context.Context, pair sdk.AccAddress, info types.MessageInfo) error {
	return k.atomically(ctx, func(ctx sdk.Context) error {
		proposal, found, err := k.getOwnershipProposal(ctx, pair)
		if err != nil {
			return err
		}
		if !found {
			return types.ErrNoOwnershipProposal
		}
		if proposal.Owner != info.Sender.String() {
			return types.ErrUnauthorized.Wrap("sender is not the proposed owner")
		}
		if blockTime(ctx) > proposal.ExpiresAt {
			return types.ErrOwnershipProposalExpired
		}
		cfg, err := k.GetConfig(ctx, pair)
		if err != nil {
			return err
		}
		cfg.Owner = proposal.Owner
		if err := k.SetConfig(ctx, pair, cfg); err != nil {
			return err
		}
		k.deleteOwnershipProposal(ctx, pair)

		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTypeClaimOwnership,
			sdk.NewAttribute(types.AttributeKeyPair, pair.String()),
			sdk.NewAttribute(types.AttributeKeyOwner, proposal.Owner),
		))
		k.Logger(ctx).Info("pair ownership claimed", "pair", pair.String(), "owner", proposal.Owner)
		return nil
	})
}
