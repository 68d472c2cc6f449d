// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package migrator

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/builtin/checkpoints"
	"github.com/vestry-labs/vestry/builtin/grants"
	"github.com/vestry-labs/vestry/builtin/reverts"
	"github.com/vestry-labs/vestry/builtin/slots"
	"github.com/vestry-labs/vestry/builtin/vesting"
	"github.com/vestry-labs/vestry/log"
	"github.com/vestry-labs/vestry/state"
	"github.com/vestry-labs/vestry/vestry"
)

var (
	logger = log.WithContext("pkg", "migrator")

	slotUnassigned = vestry.BytesToBytes32([]byte("unassigned"))
)

func SetLogger(l log.Logger) {
	logger = l
}

// Asset is a fungible asset ledger the engine moves funds on.
// It must keep its balances in the same state as the engine.
type Asset interface {
	Address() vestry.Address
	BalanceOf(addr vestry.Address) (*big.Int, error)
	Transfer(from, to vestry.Address, amount *big.Int) error
	TransferFrom(spender, from, to vestry.Address, amount *big.Int) error
}

// Options configures an engine.
type Options struct {
	Policy          Policy
	Source          Asset          // asset surrendered by migrating accounts
	Target          Asset          // asset granted in vested form
	Treasury        vestry.Address // funds allocations and takes back unvested amounts
	StalenessWindow uint32
}

// Payout is the result of a claim.
type Payout struct {
	Withdrawn *big.Int // paid to the recipient
	Returned  *big.Int // unvested amount sent back to the treasury
}

// Engine converts source asset into vesting grants of target asset and keeps
// the checkpointed voting weight of those grants.
//
// Every state-changing operation is atomic: it runs in a state checkpoint
// reverted on any error, and its events are only published on success.
// Operations are serialised; queries run concurrently with each other.
type Engine struct {
	addr     vestry.Address
	state    *state.State
	policy   Policy
	source   Asset
	target   Asset
	treasury vestry.Address

	grants     *grants.Service
	votes      *checkpoints.Ledger
	unassigned *slots.Uint256

	mu          sync.RWMutex
	pending     []Event
	subscribers []func(Event)
}

// New create a new engine living at addr.
func New(addr vestry.Address, state *state.State, opts Options) *Engine {
	sctx := slots.NewContext(addr, state)
	return &Engine{
		addr:       addr,
		state:      state,
		policy:     opts.Policy,
		source:     opts.Source,
		target:     opts.Target,
		treasury:   opts.Treasury,
		grants:     grants.New(sctx),
		votes:      checkpoints.New(sctx, opts.StalenessWindow),
		unassigned: slots.NewUint256(sctx, slotUnassigned),
	}
}

func (e *Engine) Address() vestry.Address {
	return e.addr
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// OnEvent registers fn to receive the events of every successful operation,
// in emission order. fn is called with the engine locked and must not call back into it.
func (e *Engine) OnEvent(fn func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, fn)
}

func (e *Engine) emit(ev Event) {
	e.pending = append(e.pending, ev)
}

func (e *Engine) emitVoteChanges(changes ...*checkpoints.VoteChange) {
	for _, c := range changes {
		e.emit(&VoteChanged{*c})
	}
}

// atomically runs fn as one unit. Must be called with the write lock held.
func (e *Engine) atomically(op string, fn func() error) error {
	e.pending = nil
	rev := e.state.NewCheckpoint()
	if err := fn(); err != nil {
		e.state.RevertTo(rev)
		e.pending = nil
		result := "failed"
		if reverts.IsRevertErr(err) {
			result = "rejected"
		}
		metricOpCount().AddWithLabel(1, map[string]string{"op": op, "result": result})
		logger.Info("operation rejected", "op", op, "error", err)
		return err
	}
	metricOpCount().AddWithLabel(1, map[string]string{"op": op, "result": "ok"})
	if n, err := e.grants.Count(); err == nil {
		metricLiveGrants().Set(int64(n))
	}

	events := e.pending
	e.pending = nil
	for _, ev := range events {
		for _, fn := range e.subscribers {
			fn(ev)
		}
	}
	return nil
}

// Migrate pulls amount of source asset from caller and grants its conversion
// to destination, funded by the treasury.
func (e *Engine) Migrate(caller, destination vestry.Address, amount *big.Int, block uint32) (*grants.Grant, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logger.Debug("migrate", "caller", caller, "destination", destination, "amount", amount, "block", block)

	var created *grants.Grant
	err := e.atomically("migrate", func() error {
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		recipient, err := e.policy.Recipient(caller, destination)
		if err != nil {
			return err
		}
		existing, err := e.grants.Get(recipient)
		if err != nil {
			return err
		}
		if !existing.IsEmpty() {
			return ErrExistingGrantFound
		}

		if err := e.source.TransferFrom(e.addr, caller, e.addr, amount); err != nil {
			return transferFailure(ErrSourceTransferFailed, err)
		}

		terms, err := e.policy.Terms(amount, block)
		if err != nil {
			return err
		}
		if e.policy.UsesPool() {
			if err := e.drawPool(terms.Allocation); err != nil {
				return err
			}
		}
		if err := e.target.TransferFrom(e.addr, e.treasury, e.addr, terms.Allocation); err != nil {
			return transferFailure(ErrInsufficientFunds, err)
		}

		power, err := e.policy.VotingPower(terms.Grant(recipient, new(big.Int)), block)
		if err != nil {
			return err
		}
		grant := terms.Grant(recipient, power)
		if err := e.grants.Create(recipient, grant); err != nil {
			return err
		}
		change, err := e.votes.Add(recipient, recipient, power, block)
		if err != nil {
			return err
		}

		e.emitVoteChanges(change)
		e.emit(&GrantCreated{
			Caller:     caller,
			Recipient:  recipient,
			Amount:     new(big.Int).Set(amount),
			Allocation: new(big.Int).Set(grant.Allocation),
			Block:      block,
		})
		created = grant
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("migrated", "recipient", created.Delegatee, "allocation", created.Allocation, "block", block)
	return created, nil
}

func (e *Engine) drawPool(amount *big.Int) error {
	pool, err := e.unassigned.Get()
	if err != nil {
		return err
	}
	if pool.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	return e.unassigned.Sub(amount)
}

// Claim pays out the withdrawable part of caller's grant, returns the
// unvested rest to the treasury and deletes the grant.
func (e *Engine) Claim(caller vestry.Address, block uint32) (*Payout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logger.Debug("claim", "caller", caller, "block", block)

	var payout *Payout
	err := e.atomically("claim", func() error {
		grant, err := e.grants.Get(caller)
		if err != nil {
			return err
		}
		if grant.IsEmpty() {
			return ErrNothingToClaim
		}
		withdrawable, err := e.policy.Withdrawable(grant, block)
		if err != nil {
			return err
		}
		if withdrawable.Sign() == 0 {
			return ErrNothingToClaim
		}
		unvested := vesting.SubClamp(vesting.SubClamp(grant.Allocation, grant.Withdrawn), withdrawable)

		if err := e.target.Transfer(e.addr, caller, withdrawable); err != nil {
			return transferFailure(ErrTransferFailed, err)
		}
		if unvested.Sign() > 0 {
			if err := e.target.Transfer(e.addr, e.treasury, unvested); err != nil {
				return transferFailure(ErrTreasuryTransferFailed, err)
			}
			if e.policy.UsesPool() {
				if err := e.unassigned.Add(unvested); err != nil {
					return err
				}
			}
		}

		change, err := e.votes.Sub(grant.Delegatee, vestry.Address{}, grant.LatestVotingPower, block)
		if err != nil {
			return err
		}
		if err := e.grants.Delete(caller); err != nil {
			return err
		}

		e.emitVoteChanges(change)
		e.emit(&GrantClaimed{
			Recipient: caller,
			Withdrawn: new(big.Int).Set(withdrawable),
			Returned:  new(big.Int).Set(unvested),
			Block:     block,
		})
		payout = &Payout{Withdrawn: withdrawable, Returned: unvested}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("claimed", "recipient", caller, "withdrawn", payout.Withdrawn, "returned", payout.Returned, "block", block)
	return payout, nil
}

// Delegate moves the voting weight of caller's grant to another delegatee.
func (e *Engine) Delegate(caller, to vestry.Address, block uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logger.Debug("delegate", "caller", caller, "to", to, "block", block)

	err := e.atomically("delegate", func() error {
		if to.IsZero() {
			return ErrInvalidDestination
		}
		grant, err := e.grants.Get(caller)
		if err != nil {
			return err
		}
		if grant.IsEmpty() {
			return ErrNoGrant
		}
		if grant.Delegatee == to {
			return nil
		}
		changes, err := e.votes.Move(grant.Delegatee, to, grant.LatestVotingPower, block)
		if err != nil {
			return err
		}
		if err := e.grants.Rebind(caller, to, grant.LatestVotingPower); err != nil {
			return err
		}

		e.emitVoteChanges(changes...)
		e.emit(&GrantDelegated{Recipient: caller, From: grant.Delegatee, To: to, Block: block})
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("delegated", "recipient", caller, "to", to, "block", block)
	return nil
}

// UpdateVotingPower re-syncs the weight pushed for account's grant with the
// policy formula at block, and returns the new weight.
func (e *Engine) UpdateVotingPower(account vestry.Address, block uint32) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logger.Debug("update voting power", "account", account, "block", block)

	var power *big.Int
	err := e.atomically("update", func() error {
		grant, err := e.grants.Get(account)
		if err != nil {
			return err
		}
		if grant.IsEmpty() {
			return ErrNoGrant
		}
		power, err = e.policy.VotingPower(grant, block)
		if err != nil {
			return err
		}

		var change *checkpoints.VoteChange
		switch power.Cmp(grant.LatestVotingPower) {
		case 0:
			return nil
		case 1:
			change, err = e.votes.Add(account, grant.Delegatee, new(big.Int).Sub(power, grant.LatestVotingPower), block)
		default:
			change, err = e.votes.Sub(grant.Delegatee, account, new(big.Int).Sub(grant.LatestVotingPower, power), block)
		}
		if err != nil {
			return err
		}
		if err := e.grants.Rebind(account, grant.Delegatee, power); err != nil {
			return err
		}
		e.emitVoteChanges(change)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("voting power updated", "account", account, "power", power, "block", block)
	return power, nil
}

// SetUnassigned sets the pool allocations are drawn from when the policy uses one.
func (e *Engine) SetUnassigned(amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return e.atomically("set-unassigned", func() error {
		return e.unassigned.Set(amount)
	})
}

//
// Getters - no state change
//

// GetGrant returns the grant of account, empty when it has none.
func (e *Engine) GetGrant(account vestry.Address) (*grants.Grant, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.grants.Get(account)
}

// Withdrawable returns what a claim by account would pay out at block.
func (e *Engine) Withdrawable(account vestry.Address, block uint32) (*big.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	grant, err := e.grants.Get(account)
	if err != nil {
		return nil, err
	}
	return e.policy.Withdrawable(grant, block)
}

// QueryVotePower returns the weight of account at block as seen from the
// current block. Blocks inside the staleness window fail with ErrStaleQuery.
func (e *Engine) QueryVotePower(account vestry.Address, block, current uint32, hint []byte) (*big.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	power, err := e.votes.QueryAsOf(account, block, current, hint)
	if err != nil {
		return nil, errors.WithMessage(err, "query vote power")
	}
	return power, nil
}

// QueryVotePowerView returns the weight of account at block without the staleness check.
func (e *Engine) QueryVotePowerView(account vestry.Address, block uint32) (*big.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.votes.QueryAsOfView(account, block)
}

// Checkpoints returns the checkpoint log of account.
func (e *Engine) Checkpoints(account vestry.Address) ([]*checkpoints.Checkpoint, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n, err := e.votes.Len(account)
	if err != nil {
		return nil, err
	}
	cps := make([]*checkpoints.Checkpoint, 0, n)
	for i := uint32(0); i < n; i++ {
		cp, err := e.votes.At(account, i)
		if err != nil {
			return nil, err
		}
		cps = append(cps, cp)
	}
	return cps, nil
}

// Unassigned returns the remaining pool.
func (e *Engine) Unassigned() (*big.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.unassigned.Get()
}

// LiveGrants returns the number of live grants.
func (e *Engine) LiveGrants() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.grants.Count()
}

// StalenessWindow returns the staleness window of vote power queries.
func (e *Engine) StalenessWindow() uint32 {
	return e.votes.StaleBlockLag()
}
