// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/builtin/reverts"
	"github.com/vestry-labs/vestry/builtin/slots"
	"github.com/vestry-labs/vestry/state"
	"github.com/vestry-labs/vestry/vestry"
)

var (
	slotBalances    = vestry.BytesToBytes32([]byte("balances"))
	slotAllowances  = vestry.BytesToBytes32([]byte("allowances"))
	slotMinters     = vestry.BytesToBytes32([]byte("minters"))
	slotTotalSupply = vestry.BytesToBytes32([]byte("total-supply"))

	// MaxAllowance is never decremented by TransferFrom.
	MaxAllowance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	ErrInsufficientBalance   = reverts.New("token: insufficient balance")
	ErrInsufficientAllowance = reverts.New("token: insufficient allowance")
	ErrNotMinter             = reverts.New("token: caller is not a minter")
	ErrInvalidAmount         = reverts.New("token: invalid amount")
)

type allowanceKey struct {
	owner   vestry.Address
	spender vestry.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

// Token is a fungible asset ledger living in state at its own address.
type Token struct {
	addr  vestry.Address
	name  string
	state *state.State

	balances    *slots.Mapping[vestry.Address, *big.Int]
	allowances  *slots.Mapping[allowanceKey, *big.Int]
	minters     *slots.Mapping[vestry.Address, bool]
	totalSupply *slots.Uint256
}

// New create a new instance.
func New(addr vestry.Address, name string, state *state.State) *Token {
	sctx := slots.NewContext(addr, state)
	return &Token{
		addr:        addr,
		name:        name,
		state:       state,
		balances:    slots.NewMapping[vestry.Address, *big.Int](sctx, slotBalances),
		allowances:  slots.NewMapping[allowanceKey, *big.Int](sctx, slotAllowances),
		minters:     slots.NewMapping[vestry.Address, bool](sctx, slotMinters),
		totalSupply: slots.NewUint256(sctx, slotTotalSupply),
	}
}

func (t *Token) Address() vestry.Address {
	return t.addr
}

func (t *Token) Name() string {
	return t.name
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) BalanceOf(addr vestry.Address) (*big.Int, error) {
	return t.balances.Get(addr)
}

func (t *Token) Allowance(owner, spender vestry.Address) (*big.Int, error) {
	return t.allowances.Get(allowanceKey{owner, spender})
}

// Approve sets the amount spender may move out of owner's balance.
func (t *Token) Approve(owner, spender vestry.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 || amount.Cmp(MaxAllowance) > 0 {
		return ErrInvalidAmount
	}
	return t.allowances.Set(allowanceKey{owner, spender}, new(big.Int).Set(amount))
}

// Transfer moves amount from one account to another.
func (t *Token) Transfer(from, to vestry.Address, amount *big.Int) error {
	return t.atomically(func() error {
		return t.move(from, to, amount)
	})
}

// TransferFrom moves amount out of from on behalf of spender, consuming its allowance.
func (t *Token) TransferFrom(spender, from, to vestry.Address, amount *big.Int) error {
	return t.atomically(func() error {
		if err := t.spendAllowance(from, spender, amount); err != nil {
			return err
		}
		return t.move(from, to, amount)
	})
}

// SetMinter grants or revokes the mint/burn role.
func (t *Token) SetMinter(addr vestry.Address, enabled bool) error {
	if !enabled {
		t.minters.Delete(addr)
		return nil
	}
	return t.minters.Set(addr, true)
}

func (t *Token) IsMinter(addr vestry.Address) (bool, error) {
	return t.minters.Get(addr)
}

// Mint creates amount new units credited to to. Only minters may call it.
func (t *Token) Mint(caller, to vestry.Address, amount *big.Int) error {
	return t.atomically(func() error {
		if err := t.requireMinter(caller); err != nil {
			return err
		}
		if err := validAmount(amount); err != nil {
			return err
		}
		bal, err := t.balances.Get(to)
		if err != nil {
			return err
		}
		if err := t.balances.Set(to, bal.Add(bal, amount)); err != nil {
			return err
		}
		return t.totalSupply.Add(amount)
	})
}

// Burn destroys amount units held by from. Only minters may call it.
func (t *Token) Burn(caller, from vestry.Address, amount *big.Int) error {
	return t.atomically(func() error {
		if err := t.requireMinter(caller); err != nil {
			return err
		}
		if err := validAmount(amount); err != nil {
			return err
		}
		bal, err := t.balances.Get(from)
		if err != nil {
			return err
		}
		if bal.Cmp(amount) < 0 {
			return ErrInsufficientBalance
		}
		if err := t.balances.Set(from, bal.Sub(bal, amount)); err != nil {
			return err
		}
		return t.totalSupply.Sub(amount)
	})
}

func (t *Token) requireMinter(caller vestry.Address) error {
	ok, err := t.minters.Get(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMinter
	}
	return nil
}

func (t *Token) spendAllowance(owner, spender vestry.Address, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	key := allowanceKey{owner, spender}
	allowance, err := t.allowances.Get(key)
	if err != nil {
		return err
	}
	if allowance.Cmp(MaxAllowance) == 0 {
		return nil
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	return t.allowances.Set(key, allowance.Sub(allowance, amount))
}

func (t *Token) move(from, to vestry.Address, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	fromBal, err := t.balances.Get(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := t.balances.Set(from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	return t.balances.Set(to, toBal.Add(toBal, amount))
}

// atomically reverts every storage write of fn when it fails.
func (t *Token) atomically(fn func() error) error {
	rev := t.state.NewCheckpoint()
	if err := fn(); err != nil {
		t.state.RevertTo(rev)
		return errors.WithMessage(err, t.name)
	}
	return nil
}

func validAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}
