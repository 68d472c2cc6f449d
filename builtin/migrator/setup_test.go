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

	"github.com/vestry-labs/vestry/builtin/token"
	"github.com/vestry-labs/vestry/builtin/vesting"
	"github.com/vestry-labs/vestry/lvldb"
	"github.com/vestry-labs/vestry/state"
	"github.com/vestry-labs/vestry/test/datagen"
	"github.com/vestry-labs/vestry/vestry"
)

var (
	engineAddr   = vestry.BytesToAddress([]byte("migrator"))
	sourceAddr   = vestry.BytesToAddress([]byte("source"))
	targetAddr   = vestry.BytesToAddress([]byte("target"))
	treasuryAddr = vestry.BytesToAddress([]byte("treasury"))
	adminAddr    = vestry.BytesToAddress([]byte("admin"))
)

func bigStr(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid number " + s)
	}
	return v
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), vestry.One)
}

func newBonusSchedule() *vesting.BonusSchedule {
	return &vesting.BonusSchedule{
		ConversionMultiplier: big.NewInt(10),
		FullBonusFactor:      bigStr("1008333333333333333"),
		Cliff:                100,
		Expiration:           200,
	}
}

func newFlatSchedule() *vesting.FlatSchedule {
	return &vesting.FlatSchedule{
		ConversionMultiplier: big.NewInt(10),
		UnvestedMultiplier:   40,
		Cliff:                150,
		Expiration:           200,
	}
}

// blockingAsset rejects transfers to one account.
type blockingAsset struct {
	*token.Token
	blocked vestry.Address
}

func (b *blockingAsset) Transfer(from, to vestry.Address, amount *big.Int) error {
	if to == b.blocked {
		return token.ErrInsufficientBalance
	}
	return b.Token.Transfer(from, to, amount)
}

type EngineTest struct {
	*Engine
	t      *testing.T
	state  *state.State
	source *token.Token
	target *token.Token
	events []Event
}

func newTest(t *testing.T, policy Policy) *EngineTest {
	return newTestWithTarget(t, policy, nil)
}

// newTestWithTarget lets wrap replace the target asset seen by the engine.
func newTestWithTarget(t *testing.T, policy Policy, wrap func(*token.Token) Asset) *EngineTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	source := token.New(sourceAddr, "SRC", st)
	target := token.New(targetAddr, "TGT", st)
	require.NoError(t, source.SetMinter(adminAddr, true))
	require.NoError(t, target.SetMinter(adminAddr, true))

	var targetAsset Asset = target
	if wrap != nil {
		targetAsset = wrap(target)
	}

	engine := New(engineAddr, st, Options{
		Policy:          policy,
		Source:          source,
		Target:          targetAsset,
		Treasury:        treasuryAddr,
		StalenessWindow: 20,
	})
	et := &EngineTest{Engine: engine, t: t, state: st, source: source, target: target}
	engine.OnEvent(func(ev Event) {
		et.events = append(et.events, ev)
	})
	return et
}

// Fund mints source asset to account and approves the engine to pull it.
func (et *EngineTest) Fund(account vestry.Address, amount *big.Int) *EngineTest {
	require.NoError(et.t, et.source.Mint(adminAddr, account, amount))
	require.NoError(et.t, et.source.Approve(account, engineAddr, amount))
	return et
}

// FundTreasury mints target asset to the treasury and approves the engine.
func (et *EngineTest) FundTreasury(amount *big.Int) *EngineTest {
	require.NoError(et.t, et.target.Mint(adminAddr, treasuryAddr, amount))
	require.NoError(et.t, et.target.Approve(treasuryAddr, engineAddr, token.MaxAllowance))
	return et
}

func (et *EngineTest) Migrate(caller, destination vestry.Address, amount *big.Int, block uint32) *EngineTest {
	_, err := et.Engine.Migrate(caller, destination, amount, block)
	require.NoError(et.t, err, "migrate failed")
	return et
}

func (et *EngineTest) MigrateFails(caller, destination vestry.Address, amount *big.Int, block uint32, want error) *EngineTest {
	_, err := et.Engine.Migrate(caller, destination, amount, block)
	require.ErrorIs(et.t, err, want)
	return et
}

func (et *EngineTest) Claim(caller vestry.Address, block uint32, withdrawn, returned *big.Int) *EngineTest {
	payout, err := et.Engine.Claim(caller, block)
	require.NoError(et.t, err, "claim failed")
	assert.Equal(et.t, withdrawn, payout.Withdrawn, "withdrawn mismatch")
	assert.Equal(et.t, returned, payout.Returned, "returned mismatch")
	return et
}

func (et *EngineTest) ClaimFails(caller vestry.Address, block uint32, want error) *EngineTest {
	_, err := et.Engine.Claim(caller, block)
	require.ErrorIs(et.t, err, want)
	return et
}

func (et *EngineTest) Delegate(caller, to vestry.Address, block uint32) *EngineTest {
	require.NoError(et.t, et.Engine.Delegate(caller, to, block), "delegate failed")
	return et
}

func (et *EngineTest) AssertVotes(account vestry.Address, block, current uint32, want *big.Int) *EngineTest {
	power, err := et.QueryVotePower(account, block, current, nil)
	require.NoError(et.t, err)
	assert.Equal(et.t, want, power, "vote power of %s at %d", account, block)
	return et
}

func (et *EngineTest) AssertGrant(account vestry.Address, allocation *big.Int, delegatee vestry.Address) *EngineTest {
	grant, err := et.GetGrant(account)
	require.NoError(et.t, err)
	assert.Equal(et.t, allocation, grant.Allocation, "allocation mismatch")
	assert.Equal(et.t, delegatee, grant.Delegatee, "delegatee mismatch")
	return et
}

func (et *EngineTest) AssertNoGrant(account vestry.Address) *EngineTest {
	grant, err := et.GetGrant(account)
	require.NoError(et.t, err)
	assert.True(et.t, grant.IsEmpty(), "grant should be absent")
	return et
}

func (et *EngineTest) AssertSource(account vestry.Address, want *big.Int) *EngineTest {
	bal, err := et.source.BalanceOf(account)
	require.NoError(et.t, err)
	assert.Equal(et.t, 0, want.Cmp(bal), "source balance of %s: got %v want %v", account, bal, want)
	return et
}

func (et *EngineTest) AssertTarget(account vestry.Address, want *big.Int) *EngineTest {
	bal, err := et.target.BalanceOf(account)
	require.NoError(et.t, err)
	assert.Equal(et.t, 0, want.Cmp(bal), "target balance of %s: got %v want %v", account, bal, want)
	return et
}

func (et *EngineTest) AssertEvents(n int) *EngineTest {
	assert.Len(et.t, et.events, n, "event count mismatch")
	return et
}

func (et *EngineTest) ResetEvents() *EngineTest {
	et.events = nil
	return et
}

func randAccount() vestry.Address {
	return datagen.RandAddress()
}
