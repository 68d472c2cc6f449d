// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package migrator

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestry-labs/vestry/builtin/reverts"
	"github.com/vestry-labs/vestry/builtin/token"
	"github.com/vestry-labs/vestry/vestry"
)

func TestMigrateAndClaimHalfway(t *testing.T) {
	alice := randAccount()
	allocation := bigStr("1008333333333333333000")
	base := tokens(1000)

	newTest(t, NewBonusPolicy(newBonusSchedule())).
		Fund(alice, tokens(100)).
		FundTreasury(tokens(10000)).
		Migrate(alice, alice, tokens(100), 50).
		AssertGrant(alice, allocation, alice).
		AssertSource(alice, new(big.Int)).
		AssertSource(engineAddr, tokens(100)).
		AssertTarget(engineAddr, allocation).
		AssertTarget(treasuryAddr, new(big.Int).Sub(tokens(10000), allocation)).
		AssertVotes(alice, 50, 70, base).
		AssertEvents(2).
		Claim(alice, 150, bigStr("1004166666666666666500"), bigStr("4166666666666666500")).
		AssertNoGrant(alice).
		AssertTarget(alice, bigStr("1004166666666666666500")).
		AssertTarget(engineAddr, new(big.Int)).
		AssertTarget(treasuryAddr, new(big.Int).Sub(tokens(10000), bigStr("1004166666666666666500"))).
		AssertVotes(alice, 150, 170, new(big.Int)).
		AssertVotes(alice, 149, 170, base).
		AssertEvents(4)
}

func TestMigrateTwice(t *testing.T) {
	alice := randAccount()

	et := newTest(t, NewBonusPolicy(newBonusSchedule())).
		Fund(alice, tokens(200)).
		FundTreasury(tokens(10000)).
		Migrate(alice, alice, tokens(100), 50).
		ResetEvents().
		MigrateFails(alice, alice, tokens(100), 60, ErrExistingGrantFound).
		AssertSource(alice, tokens(100)).
		AssertGrant(alice, bigStr("1008333333333333333000"), alice).
		AssertVotes(alice, 60, 80, tokens(1000)).
		AssertEvents(0)

	count, err := et.LiveGrants()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestMigrateWithoutAllowance(t *testing.T) {
	bob := randAccount()
	et := newTest(t, NewBonusPolicy(newBonusSchedule())).FundTreasury(tokens(10000))
	require.NoError(t, et.source.Mint(adminAddr, bob, tokens(100)))

	_, err := et.Engine.Migrate(bob, bob, tokens(100), 50)
	assert.ErrorIs(t, err, ErrSourceTransferFailed)
	assert.ErrorIs(t, err, token.ErrInsufficientAllowance)
	assert.True(t, reverts.IsRevertErr(err))

	et.AssertNoGrant(bob).
		AssertSource(bob, tokens(100)).
		AssertTarget(treasuryAddr, tokens(10000)).
		AssertTarget(engineAddr, new(big.Int)).
		AssertEvents(0)
}

func TestMigrateInsufficientTreasury(t *testing.T) {
	alice := randAccount()

	newTest(t, NewBonusPolicy(newBonusSchedule())).
		Fund(alice, tokens(100)).
		FundTreasury(tokens(1000)).
		MigrateFails(alice, alice, tokens(100), 50, ErrInsufficientFunds).
		// the source pull is rolled back with the failed target pull
		AssertSource(alice, tokens(100)).
		AssertSource(engineAddr, new(big.Int)).
		AssertTarget(treasuryAddr, tokens(1000)).
		AssertNoGrant(alice).
		AssertVotes(alice, 50, 100, new(big.Int)).
		AssertEvents(0)
}

func TestMigrateInvalidInput(t *testing.T) {
	alice := randAccount()

	et := newTest(t, NewBonusPolicy(newBonusSchedule())).
		Fund(alice, tokens(100)).
		FundTreasury(tokens(10000)).
		MigrateFails(alice, alice, new(big.Int), 50, ErrInvalidAmount).
		MigrateFails(alice, alice, big.NewInt(-1), 50, ErrInvalidAmount)

	_, err := et.Engine.Migrate(alice, alice, nil, 50)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// the bonus variant migrates to the caller when no destination is given
	et.Migrate(alice, vestry.Address{}, tokens(100), 50).
		AssertGrant(alice, bigStr("1008333333333333333000"), alice)
}

func TestMigrateBranches(t *testing.T) {
	tests := []struct {
		name       string
		block      uint32
		allocation string
		power      string
	}{
		{"pre-cliff", 50, "1008333333333333333000", "1000000000000000000000"},
		{"mid-schedule", 150, "1004166666666666666000", "1000000000000000000000"},
		{"post-expiration", 250, "1000000000000000000000", "1000000000000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alice := randAccount()
			newTest(t, NewBonusPolicy(newBonusSchedule())).
				Fund(alice, tokens(100)).
				FundTreasury(tokens(10000)).
				Migrate(alice, alice, tokens(100), tt.block).
				AssertGrant(alice, bigStr(tt.allocation), alice).
				AssertVotes(alice, tt.block, tt.block+20, bigStr(tt.power))
		})
	}
}

func TestMigrateToDestination(t *testing.T) {
	alice, carol := randAccount(), randAccount()

	newTest(t, NewBonusPolicy(newBonusSchedule())).
		Fund(alice, tokens(100)).
		FundTreasury(tokens(10000)).
		Migrate(alice, carol, tokens(100), 50).
		AssertNoGrant(alice).
		AssertGrant(carol, bigStr("1008333333333333333000"), carol).
		AssertVotes(carol, 50, 70, tokens(1000)).
		ClaimFails(alice, 150, ErrNothingToClaim).
		Claim(carol, 250, bigStr("1008333333333333333000"), new(big.Int)).
		AssertTarget(carol, bigStr("1008333333333333333000"))
}

func TestClaimNothing(t *testing.T) {
	alice := randAccount()

	newTest(t, NewBonusPolicy(newBonusSchedule())).
		ClaimFails(alice, 50, ErrNothingToClaim).
		Fund(alice, tokens(100)).
		FundTreasury(tokens(10000)).
		Migrate(alice, alice, tokens(100), 50).
		ResetEvents().
		ClaimFails(alice, 99, ErrNothingToClaim).
		AssertGrant(alice, bigStr("1008333333333333333000"), alice).
		AssertEvents(0)
}

func TestDelegate(t *testing.T) {
	alice, bob := randAccount(), randAccount()

	et := newTest(t, NewBonusPolicy(newBonusSchedule())).
		Fund(alice, tokens(100)).
		FundTreasury(tokens(10000)).
		Migrate(alice, alice, tokens(100), 50).
		ResetEvents().
		Delegate(alice, bob, 60).
		AssertGrant(alice, bigStr("1008333333333333333000"), bob).
		AssertEvents(3).
		AssertVotes(alice, 60, 80, new(big.Int)).
		AssertVotes(bob, 60, 80, tokens(1000)).
		AssertVotes(alice, 59, 80, tokens(1000)).
		AssertVotes(bob, 59, 80, new(big.Int))

	// not observable before the staleness window elapsed
	_, err := et.QueryVotePower(bob, 60, 79, nil)
	assert.ErrorIs(t, err, ErrStaleQuery)

	// re-delegating to the current delegatee is a no-op
	et.ResetEvents().Delegate(alice, bob, 61).AssertEvents(0)

	require.ErrorIs(t, et.Engine.Delegate(alice, vestry.Address{}, 62), ErrInvalidDestination)
	require.ErrorIs(t, et.Engine.Delegate(bob, alice, 62), ErrNoGrant)

	// claiming removes the weight from the delegatee
	et.Claim(alice, 150, bigStr("1004166666666666666500"), bigStr("4166666666666666500")).
		AssertVotes(bob, 150, 170, new(big.Int)).
		AssertVotes(alice, 150, 170, new(big.Int))
}

func TestDelegateKeepsOtherWeight(t *testing.T) {
	alice, bob := randAccount(), randAccount()

	newTest(t, NewBonusPolicy(newBonusSchedule())).
		Fund(alice, tokens(100)).
		Fund(bob, tokens(50)).
		FundTreasury(tokens(10000)).
		Migrate(alice, alice, tokens(100), 50).
		Migrate(bob, bob, tokens(50), 50).
		Delegate(alice, bob, 60).
		AssertVotes(bob, 60, 80, tokens(1500)).
		Claim(alice, 200, bigStr("1008333333333333333000"), new(big.Int)).
		AssertVotes(bob, 200, 220, tokens(500))
}

func TestUpdateVotingPower(t *testing.T) {
	alice, bob := randAccount(), randAccount()

	et := newTest(t, NewBonusPolicy(newBonusSchedule())).
		Fund(alice, tokens(100)).
		FundTreasury(tokens(10000)).
		Migrate(alice, alice, tokens(100), 50).
		Delegate(alice, bob, 60).
		ResetEvents()

	power, err := et.UpdateVotingPower(alice, 150)
	require.NoError(t, err)
	assert.Equal(t, bigStr("1004166666666666666500"), power)
	et.AssertEvents(1).
		AssertVotes(bob, 150, 170, power).
		AssertVotes(bob, 149, 170, tokens(1000))

	grant, err := et.GetGrant(alice)
	require.NoError(t, err)
	assert.Equal(t, power, grant.LatestVotingPower)

	// unchanged weight pushes nothing
	et.ResetEvents()
	_, err = et.UpdateVotingPower(alice, 150)
	require.NoError(t, err)
	et.AssertEvents(0)

	_, err = et.UpdateVotingPower(bob, 150)
	assert.ErrorIs(t, err, ErrNoGrant)

	// claim subtracts the latest pushed weight
	et.Claim(alice, 150, bigStr("1004166666666666666500"), bigStr("4166666666666666500")).
		AssertVotes(bob, 150, 170, new(big.Int))
}

func TestClaimTreasuryTransferFails(t *testing.T) {
	alice := randAccount()

	et := newTestWithTarget(t, NewBonusPolicy(newBonusSchedule()), func(tok *token.Token) Asset {
		return &blockingAsset{Token: tok, blocked: treasuryAddr}
	}).
		Fund(alice, tokens(100)).
		FundTreasury(tokens(10000)).
		Migrate(alice, alice, tokens(100), 50).
		ResetEvents().
		ClaimFails(alice, 150, ErrTreasuryTransferFailed).
		// the payout to alice is rolled back and the grant survives
		AssertTarget(alice, new(big.Int)).
		AssertTarget(engineAddr, bigStr("1008333333333333333000")).
		AssertGrant(alice, bigStr("1008333333333333333000"), alice).
		AssertVotes(alice, 150, 170, tokens(1000)).
		AssertEvents(0)

	// with nothing left to return, the claim succeeds
	et.Claim(alice, 200, bigStr("1008333333333333333000"), new(big.Int))
}

func TestClaimTransferFails(t *testing.T) {
	alice := randAccount()

	newTestWithTarget(t, NewBonusPolicy(newBonusSchedule()), func(tok *token.Token) Asset {
		return &blockingAsset{Token: tok, blocked: alice}
	}).
		Fund(alice, tokens(100)).
		FundTreasury(tokens(10000)).
		Migrate(alice, alice, tokens(100), 50).
		ClaimFails(alice, 150, ErrTransferFailed).
		AssertGrant(alice, bigStr("1008333333333333333000"), alice)
}

func TestEventOrder(t *testing.T) {
	alice := randAccount()

	et := newTest(t, NewBonusPolicy(newBonusSchedule())).
		Fund(alice, tokens(100)).
		FundTreasury(tokens(10000)).
		Migrate(alice, alice, tokens(100), 50).
		Claim(alice, 250, bigStr("1008333333333333333000"), new(big.Int)).
		AssertEvents(4)

	vc, ok := et.events[0].(*VoteChanged)
	require.True(t, ok)
	assert.Equal(t, alice, vc.Delegatee)
	assert.Equal(t, tokens(1000), vc.Delta)

	created, ok := et.events[1].(*GrantCreated)
	require.True(t, ok)
	assert.Equal(t, tokens(100), created.Amount)

	vc, ok = et.events[2].(*VoteChanged)
	require.True(t, ok)
	assert.Equal(t, new(big.Int).Neg(tokens(1000)), vc.Delta)
	assert.Equal(t, uint32(250), vc.BlockNumber())

	claimed, ok := et.events[3].(*GrantClaimed)
	require.True(t, ok)
	assert.Equal(t, 0, claimed.Returned.Sign())
}
