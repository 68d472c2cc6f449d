// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestry-labs/vestry/builtin/migrator"
	"github.com/vestry-labs/vestry/chain"
	"github.com/vestry-labs/vestry/config"
	"github.com/vestry-labs/vestry/logdb"
	"github.com/vestry-labs/vestry/lvldb"
	"github.com/vestry-labs/vestry/state"
	"github.com/vestry-labs/vestry/vestry"
)

func newExecutor(t *testing.T, cfg *config.Config) (*Executor, *logdb.LogDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logDB.Close() })

	repo, err := chain.NewRepository(db)
	require.NoError(t, err)
	rt, err := New(state.New(db), cfg)
	require.NoError(t, err)

	x := NewExecutor(rt, repo, logDB)
	require.NoError(t, x.Run(0, rt.Genesis))
	return x, logDB
}

func TestExecute(t *testing.T) {
	cfg := config.Default()
	x, logDB := newExecutor(t, cfg)
	alice := vestry.BytesToAddress([]byte("alice"))

	ticked := x.Ticked()
	block, err := x.Execute(&Op{Op: OpMint, Token: SourceToken, To: alice, Amount: config.NewAmount(tokens(100))})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), block, "defaults to the block after the head")
	select {
	case <-ticked:
	default:
		t.Fatal("execute did not tick")
	}

	ops := []*Op{
		{Op: OpApprove, Token: SourceToken, Caller: alice, Amount: config.NewAmount(tokens(100))},
		{Op: OpMint, Token: TargetToken, To: cfg.Treasury, Amount: config.NewAmount(tokens(2000))},
		{Op: OpApprove, Token: TargetToken, Caller: cfg.Treasury, Amount: config.NewAmount(tokens(2000))},
		{Op: OpMigrate, Block: 50, Caller: alice, Amount: config.NewAmount(tokens(100))},
		{Op: OpUpdatePower, Block: 120, Account: alice},
	}
	for _, op := range ops {
		_, err := x.Execute(op)
		require.NoError(t, err, op.Op)
	}
	assert.Equal(t, uint32(120), x.Head())

	allowance, err := x.Runtime().Source().Allowance(alice, cfg.Engine)
	require.NoError(t, err)
	assert.Equal(t, 0, allowance.Sign(), "approval defaults to the engine as spender")

	changes, err := logDB.FilterVoteChanges(context.Background(), &logdb.VoteFilter{Account: &alice})
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, uint32(50), changes[0].BlockNumber)
	assert.Equal(t, uint32(120), changes[1].BlockNumber)

	_, err = x.Execute(&Op{Op: OpClaim, Block: 100, Caller: alice})
	assert.ErrorIs(t, err, chain.ErrBlockTooOld)

	_, err = x.Execute(&Op{Op: OpMigrate, Caller: alice})
	assert.EqualError(t, err, "migrate: amount is required")

	_, err = x.Execute(&Op{Op: "stake"})
	assert.Error(t, err)

	_, err = x.Execute(&Op{Op: OpClaim, Block: 150, Caller: alice})
	require.NoError(t, err)
	_, err = x.Execute(&Op{Op: OpClaim, Caller: alice})
	assert.ErrorIs(t, err, migrator.ErrNothingToClaim)
}

func TestRunReverts(t *testing.T) {
	cfg := config.Default()
	x, logDB := newExecutor(t, cfg)
	rt := x.Runtime()
	alice := vestry.BytesToAddress([]byte("alice"))

	err := x.Run(5, func() error {
		require.NoError(t, rt.Source().Mint(cfg.Admin, alice, big.NewInt(1)))
		return errors.New("abort")
	})
	assert.EqualError(t, err, "abort")
	assert.Equal(t, uint32(0), x.Head())

	// a later commit must not carry the aborted mint
	require.NoError(t, x.Run(6, func() error { return nil }))
	bal, err := rt.Source().BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Sign())

	// nor the events of an aborted change
	require.NoError(t, x.Run(7, func() error {
		return rt.Source().Mint(cfg.Admin, alice, tokens(1))
	}))
	require.NoError(t, x.Run(7, func() error {
		return rt.Source().Approve(alice, cfg.Engine, tokens(1))
	}))
	require.NoError(t, x.Run(7, func() error {
		return rt.Target().Mint(cfg.Admin, cfg.Treasury, tokens(100))
	}))
	require.NoError(t, x.Run(7, func() error {
		return rt.Target().Approve(cfg.Treasury, cfg.Engine, tokens(100))
	}))
	err = x.Run(8, func() error {
		if _, err := rt.Engine().Migrate(alice, vestry.Address{}, tokens(1), 8); err != nil {
			return err
		}
		return errors.New("abort")
	})
	assert.EqualError(t, err, "abort")
	require.NoError(t, x.Run(9, func() error { return nil }))

	evs, err := logDB.FilterGrantEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, evs)
	grant, err := rt.Engine().GetGrant(alice)
	require.NoError(t, err)
	assert.True(t, grant.IsEmpty())
}

func TestViewWhileExecuting(t *testing.T) {
	x, _ := newExecutor(t, config.Default())
	rt := x.Runtime()
	bob := vestry.BytesToAddress([]byte("bob"))

	const n = 300
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			op := &Op{Op: OpMint, Token: TargetToken, To: bob, Amount: config.NewAmount(big.NewInt(1))}
			if _, err := x.Execute(op); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	for reading := true; reading; {
		select {
		case <-done:
			reading = false
		default:
		}
		require.NoError(t, x.View(func() error {
			bal, err := rt.Target().BalanceOf(bob)
			if err != nil {
				return err
			}
			if _, err := rt.Engine().GetGrant(bob); err != nil {
				return err
			}
			// one unit minted per block
			assert.Equal(t, uint64(x.Head()), bal.Uint64(), "a view sees whole blocks only")
			return nil
		}))
	}
	assert.Equal(t, uint32(n), x.Head())
}

func TestLogFailureKeepsCommit(t *testing.T) {
	cfg := config.Default()
	x, logDB := newExecutor(t, cfg)
	alice := vestry.BytesToAddress([]byte("alice"))

	ops := []*Op{
		{Op: OpMint, Token: SourceToken, To: alice, Amount: config.NewAmount(tokens(100))},
		{Op: OpApprove, Token: SourceToken, Caller: alice, Amount: config.NewAmount(tokens(100))},
		{Op: OpMint, Token: TargetToken, To: cfg.Treasury, Amount: config.NewAmount(tokens(2000))},
		{Op: OpApprove, Token: TargetToken, Caller: cfg.Treasury, Amount: config.NewAmount(tokens(2000))},
	}
	for _, op := range ops {
		_, err := x.Execute(op)
		require.NoError(t, err, op.Op)
	}

	require.NoError(t, logDB.Close())
	block, err := x.Execute(&Op{Op: OpMigrate, Block: 50, Caller: alice, Amount: config.NewAmount(tokens(100))})
	require.NoError(t, err, "the change is committed even though its logs are not")
	assert.Equal(t, uint32(50), block)
	assert.Equal(t, uint32(50), x.Head())
	assert.Equal(t, 0, x.rec.Len(), "unwritten events are dropped")

	grant, err := x.Runtime().Engine().GetGrant(alice)
	require.NoError(t, err)
	assert.False(t, grant.IsEmpty())
}
