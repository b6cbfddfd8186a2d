package keeper_test

import (
	"time"

	keepertest "github.com/astroport-fi/astroport-core-sub001/testutil/keeper"
	"github.com/astroport-fi/astroport-core-sub001/x/pair/types"
)

func (suite *KeeperTestSuite) TestOwnershipTransfer() {
	pair := keepertest.CreatePair(suite.T(), suite.h, suite.ctx, types.PairTypeStable, []types.AssetInfo{luna, usd}, `{"amp":100,"owner":"`+suite.alice.String()+`"}`)
	asAlice := types.MessageInfo{Sender: suite.alice}
	asBob := types.MessageInfo{Sender: suite.bob}

	cfg, err := suite.h.Keeper.Config(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Equal(suite.alice.String(), cfg.Owner)

	tests := []struct {
		name string
		info types.MessageInfo
		msg  types.ProposeNewOwnerMsg
		err  error
	}{
		{"not the owner", asBob, types.ProposeNewOwnerMsg{Owner: suite.bob.String(), ExpiresIn: 100}, types.ErrUnauthorized},
		{"factory owner is not the pair owner", types.MessageInfo{Sender: keepertest.FactoryOwner}, types.ProposeNewOwnerMsg{Owner: suite.bob.String(), ExpiresIn: 100}, types.ErrUnauthorized},
		{"invalid address", asAlice, types.ProposeNewOwnerMsg{Owner: "nobody", ExpiresIn: 100}, types.ErrInvalidAddress},
		{"same owner", asAlice, types.ProposeNewOwnerMsg{Owner: suite.alice.String(), ExpiresIn: 100}, types.ErrSameOwner},
		{"ttl too long", asAlice, types.ProposeNewOwnerMsg{Owner: suite.bob.String(), ExpiresIn: types.MaxProposalTTL + 1}, types.ErrOwnershipTTL},
	}
	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Require().ErrorIs(suite.h.Keeper.ProposeNewOwner(suite.ctx, pair, tc.info, tc.msg), tc.err)
		})
	}

	suite.Require().ErrorIs(suite.h.Keeper.ClaimOwnership(suite.ctx, pair, asBob), types.ErrNoOwnershipProposal)

	suite.Require().NoError(suite.h.Keeper.ProposeNewOwner(suite.ctx, pair, asAlice, types.ProposeNewOwnerMsg{Owner: suite.bob.String(), ExpiresIn: 100}))
	suite.Require().True(hasEvent(suite.ctx, types.EventTypeProposeNewOwner))
	suite.Require().ErrorIs(suite.h.Keeper.ClaimOwnership(suite.ctx, pair, asAlice), types.ErrUnauthorized)

	suite.Require().ErrorIs(suite.h.Keeper.DropOwnershipProposal(suite.ctx, pair, asBob), types.ErrUnauthorized)
	suite.Require().NoError(suite.h.Keeper.DropOwnershipProposal(suite.ctx, pair, asAlice))
	suite.Require().ErrorIs(suite.h.Keeper.ClaimOwnership(suite.ctx, pair, asBob), types.ErrNoOwnershipProposal)

	suite.Require().NoError(suite.h.Keeper.ProposeNewOwner(suite.ctx, pair, asAlice, types.ProposeNewOwnerMsg{Owner: suite.bob.String(), ExpiresIn: 100}))
	suite.nextBlock(100 * time.Second)
	suite.Require().NoError(suite.h.Keeper.ClaimOwnership(suite.ctx, pair, asBob))
	suite.Require().True(hasEvent(suite.ctx, types.EventTypeClaimOwnership))

	cfg, err = suite.h.Keeper.Config(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Equal(suite.bob.String(), cfg.Owner)
	suite.Require().ErrorIs(suite.h.Keeper.ClaimOwnership(suite.ctx, pair, asBob), types.ErrNoOwnershipProposal)

	// the new owner controls the pair config
	err = suite.h.Keeper.UpdateConfig(suite.ctx, pair, asAlice, types.UpdateConfigMsg{Params: []byte(`{"enable_asset_balances_tracking":{}}`)})
	suite.Require().ErrorIs(err, types.ErrUnauthorized)
	suite.Require().NoError(suite.h.Keeper.UpdateConfig(suite.ctx, pair, asBob, types.UpdateConfigMsg{Params: []byte(`{"enable_asset_balances_tracking":{}}`)}))
}

func (suite *KeeperTestSuite) TestOwnershipProposalExpires() {
	pair := keepertest.CreatePair(suite.T(), suite.h, suite.ctx, types.PairTypeXYK, []types.AssetInfo{luna, usd}, "")
	owner := types.MessageInfo{Sender: keepertest.FactoryOwner}

	cfg, err := suite.h.Keeper.Config(suite.ctx, pair)
	suite.Require().NoError(err)
	suite.Require().Equal(keepertest.FactoryOwner.String(), cfg.Owner)

	suite.Require().NoError(suite.h.Keeper.ProposeNewOwner(suite.ctx, pair, owner, types.ProposeNewOwnerMsg{Owner: suite.bob.String(), ExpiresIn: 60}))
	suite.nextBlock(61 * time.Second)
	suite.Require().ErrorIs(suite.h.Keeper.ClaimOwnership(suite.ctx, pair, types.MessageInfo{Sender: suite.bob}), types.ErrOwnershipProposalExpired)

	// an expired proposal can be replaced
	suite.Require().NoError(suite.h.Keeper.ProposeNewOwner(suite.ctx, pair, owner, types.ProposeNewOwnerMsg{Owner: suite.bob.String(), ExpiresIn: 60}))
	suite.Require().NoError(suite.h.Keeper.ClaimOwnership(suite.ctx, pair, types.MessageInfo{Sender: suite.bob}))
}
