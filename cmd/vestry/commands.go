// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vestry-labs/vestry/builtin/token"
	"github.com/vestry-labs/vestry/logdb"
	"github.com/vestry-labs/vestry/vestry"
)

// withEnv opens the data dir around fn.
func withEnv(fresh bool, fn func(ctx *cli.Context, e *env) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		initLogger(ctx)
		e, err := openEnv(ctx, fresh)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(ctx, e)
	}
}

// mutate runs op at the block of the command and commits it.
func mutate(op func(ctx *cli.Context, e *env, block uint32) error) cli.ActionFunc {
	return withEnv(false, func(ctx *cli.Context, e *env) error {
		block, err := e.block(ctx)
		if err != nil {
			return err
		}
		return e.x.Run(block, func() error {
			return op(ctx, e, block)
		})
	})
}

// query runs a read only command against the committed state.
func query(fn func(ctx *cli.Context, e *env) error) cli.ActionFunc {
	return withEnv(false, func(ctx *cli.Context, e *env) error {
		return e.x.View(func() error {
			return fn(ctx, e)
		})
	})
}

func initAction(ctx *cli.Context, e *env) error {
	if err := e.x.Run(0, e.rt.Genesis); err != nil {
		return err
	}
	if err := e.cfg.Save(filepath.Join(e.dir, configFileName)); err != nil {
		return err
	}
	fmt.Printf("initialized %s with the %s policy\n", e.dir, e.cfg.Policy)
	fmt.Printf("engine:   %v\nsource:   %v\ntarget:   %v\ntreasury: %v\nadmin:    %v\n",
		e.cfg.Engine, e.cfg.Source, e.cfg.Target, e.cfg.Treasury, e.cfg.Admin)
	return nil
}

func mintAction(ctx *cli.Context, e *env, _ uint32) error {
	t, err := e.token(ctx)
	if err != nil {
		return err
	}
	to, err := parseAddress(ctx, toFlag)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx.String(amountFlag.Name))
	if err != nil {
		return err
	}
	caller := e.cfg.Admin
	if ctx.String(callerFlag.Name) != "" {
		if caller, err = parseAddress(ctx, callerFlag); err != nil {
			return err
		}
	}
	if err := t.Mint(caller, to, amount); err != nil {
		return err
	}
	fmt.Printf("minted %v %s to %v\n", amount, t.Name(), to)
	return nil
}

func burnAction(ctx *cli.Context, e *env, _ uint32) error {
	t, err := e.token(ctx)
	if err != nil {
		return err
	}
	account, err := parseAddress(ctx, accountFlag)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx.String(amountFlag.Name))
	if err != nil {
		return err
	}
	caller := e.cfg.Admin
	if ctx.String(callerFlag.Name) != "" {
		if caller, err = parseAddress(ctx, callerFlag); err != nil {
			return err
		}
	}
	if err := t.Burn(caller, account, amount); err != nil {
		return err
	}
	fmt.Printf("burned %v %s of %v\n", amount, t.Name(), account)
	return nil
}

func approveAction(ctx *cli.Context, e *env, _ uint32) error {
	t, err := e.token(ctx)
	if err != nil {
		return err
	}
	owner, err := parseAddress(ctx, callerFlag)
	if err != nil {
		return err
	}
	spender := e.cfg.Engine
	if ctx.String(spenderFlag.Name) != "" {
		if spender, err = parseAddress(ctx, spenderFlag); err != nil {
			return err
		}
	}
	amount, err := parseAmount(ctx.String(amountFlag.Name))
	if err != nil {
		return err
	}
	if err := t.Approve(owner, spender, amount); err != nil {
		return err
	}
	fmt.Printf("%v approved %v to spend %v %s\n", owner, spender, amount, t.Name())
	return nil
}

func migrateAction(ctx *cli.Context, e *env, block uint32) error {
	caller, err := parseAddress(ctx, callerFlag)
	if err != nil {
		return err
	}
	to, err := parseOptionalAddress(ctx, toFlag)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx.String(amountFlag.Name))
	if err != nil {
		return err
	}
	grant, err := e.rt.Engine().Migrate(caller, to, amount, block)
	if err != nil {
		return err
	}
	fmt.Printf("granted %v to %v at block %d, voting power %v\n", grant.Allocation, grant.Delegatee, block, grant.LatestVotingPower)
	return nil
}

func claimAction(ctx *cli.Context, e *env, block uint32) error {
	caller, err := parseAddress(ctx, callerFlag)
	if err != nil {
		return err
	}
	payout, err := e.rt.Engine().Claim(caller, block)
	if err != nil {
		return err
	}
	fmt.Printf("withdrawn %v, returned %v to the treasury\n", payout.Withdrawn, payout.Returned)
	return nil
}

func delegateAction(ctx *cli.Context, e *env, block uint32) error {
	caller, err := parseAddress(ctx, callerFlag)
	if err != nil {
		return err
	}
	to, err := parseAddress(ctx, toFlag)
	if err != nil {
		return err
	}
	if err := e.rt.Engine().Delegate(caller, to, block); err != nil {
		return err
	}
	fmt.Printf("%v delegated to %v at block %d\n", caller, to, block)
	return nil
}

func updatePowerAction(ctx *cli.Context, e *env, block uint32) error {
	account, err := parseAddress(ctx, accountFlag)
	if err != nil {
		return err
	}
	power, err := e.rt.Engine().UpdateVotingPower(account, block)
	if err != nil {
		return err
	}
	fmt.Printf("voting power of %v is %v at block %d\n", account, power, block)
	return nil
}

func grantAction(ctx *cli.Context, e *env) error {
	account, err := parseAddress(ctx, accountFlag)
	if err != nil {
		return err
	}
	block := e.repo.Head()
	if s := ctx.String(blockFlag.Name); s != "" {
		if block, err = parseBlock(s); err != nil {
			return err
		}
	}
	grant, err := e.rt.Engine().GetGrant(account)
	if err != nil {
		return err
	}
	if grant.IsEmpty() {
		fmt.Printf("%v has no grant\n", account)
		return nil
	}
	withdrawable, err := e.rt.Engine().Withdrawable(account, block)
	if err != nil {
		return err
	}
	fmt.Printf("allocation:   %v\n", grant.Allocation)
	fmt.Printf("withdrawn:    %v\n", grant.Withdrawn)
	fmt.Printf("schedule:     created %d, cliff %d, expiration %d\n", grant.Created, grant.Cliff, grant.Expiration)
	fmt.Printf("voting power: %v\n", grant.LatestVotingPower)
	fmt.Printf("delegatee:    %v\n", grant.Delegatee)
	fmt.Printf("withdrawable: %v at block %d\n", withdrawable, block)
	return nil
}

func votesAction(ctx *cli.Context, e *env) error {
	account, err := parseAddress(ctx, accountFlag)
	if err != nil {
		return err
	}
	head := e.repo.Head()
	current := head
	if s := ctx.String(currentFlag.Name); s != "" {
		if current, err = parseBlock(s); err != nil {
			return err
		}
	}
	if current > head {
		return errors.Errorf("current block %d is ahead of the head %d", current, head)
	}
	var block uint32
	if s := ctx.String(blockFlag.Name); s != "" {
		if block, err = parseBlock(s); err != nil {
			return err
		}
	} else {
		lag := e.rt.Engine().StalenessWindow()
		if current < lag {
			return fmt.Errorf("no block is out of the staleness window at %d", current)
		}
		block = current - lag
	}
	hint, err := parseHint(ctx.String(hintFlag.Name))
	if err != nil {
		return err
	}
	power, err := e.rt.Engine().QueryVotePower(account, block, current, hint)
	if err != nil {
		return err
	}
	fmt.Printf("vote power of %v at block %d: %v\n", account, block, power)
	return nil
}

func balanceAction(ctx *cli.Context, e *env) error {
	account, err := parseAddress(ctx, accountFlag)
	if err != nil {
		return err
	}
	for _, t := range []*token.Token{e.rt.Source(), e.rt.Target()} {
		bal, err := t.BalanceOf(account)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %v\n", t.Name(), bal)
	}
	return nil
}

func logsAction(ctx *cli.Context, e *env) error {
	account, err := parseOptionalAddress(ctx, accountFlag)
	if err != nil {
		return err
	}
	var filterAccount *vestry.Address
	if !account.IsZero() {
		filterAccount = &account
	}
	opts := &logdb.Options{Limit: ctx.Uint64(limitFlag.Name)}

	switch ctx.String(kindFlag.Name) {
	case "votes":
		changes, err := e.logDB.FilterVoteChanges(context.Background(), &logdb.VoteFilter{Account: filterAccount, Options: opts})
		if err != nil {
			return err
		}
		for _, c := range changes {
			fmt.Printf("#%d.%d delegatee %v %+v (from %v to %v)\n", c.BlockNumber, c.Index, c.Delegatee, c.Delta, c.From, c.To)
		}
	case "grants":
		events, err := e.logDB.FilterGrantEvents(context.Background(), &logdb.GrantFilter{Recipient: filterAccount, Options: opts})
		if err != nil {
			return err
		}
		for _, ev := range events {
			fmt.Printf("#%d.%d %s %v counterparty %v amount %v extra %v\n", ev.BlockNumber, ev.Index, ev.Kind, ev.Recipient, ev.Counterparty, ev.Amount, ev.Extra)
		}
	default:
		return errors.Errorf("unknown kind %q", ctx.String(kindFlag.Name))
	}
	return nil
}

func headAction(_ *cli.Context, e *env) error {
	fmt.Printf("head: %d\n", e.repo.Head())
	for _, t := range []*token.Token{e.rt.Source(), e.rt.Target()} {
		supply, err := t.TotalSupply()
		if err != nil {
			return err
		}
		fmt.Printf("%s supply: %v\n", t.Name(), supply)
	}
	live, err := e.rt.Engine().LiveGrants()
	if err != nil {
		return err
	}
	fmt.Printf("live grants: %d\n", live)
	size, err := e.db.Size()
	if err != nil {
		return err
	}
	fmt.Printf("state size: %d bytes\n", size)
	return nil
}
