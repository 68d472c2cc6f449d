// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package migrator

import (
	"github.com/vestry-labs/vestry/builtin/vesting"
	"github.com/vestry-labs/vestry/vestry"
)

// Policy is the variant of the migration engine: its vesting schedule plus
// the rules that differ between variants.
type Policy interface {
	vesting.Schedule

	Name() string
	// Recipient resolves the grant owner of a migration by caller to destination.
	Recipient(caller, destination vestry.Address) (vestry.Address, error)
	// UsesPool reports whether allocations draw on the unassigned pool.
	UsesPool() bool
}

// BonusPolicy is the bonus-decay variant. A zero destination migrates to the caller.
type BonusPolicy struct {
	*vesting.BonusSchedule
}

func NewBonusPolicy(schedule *vesting.BonusSchedule) *BonusPolicy {
	return &BonusPolicy{schedule}
}

func (p *BonusPolicy) Name() string { return "bonus" }

func (p *BonusPolicy) Recipient(caller, destination vestry.Address) (vestry.Address, error) {
	if destination.IsZero() {
		return caller, nil
	}
	return destination, nil
}

func (p *BonusPolicy) UsesPool() bool { return false }

// FlatPolicy is the flat-vesting variant. Destinations are mandatory and, when
// Pool is set, every allocation is drawn from the unassigned pool.
type FlatPolicy struct {
	*vesting.FlatSchedule
	Pool bool
}

func NewFlatPolicy(schedule *vesting.FlatSchedule, pool bool) *FlatPolicy {
	return &FlatPolicy{schedule, pool}
}

func (p *FlatPolicy) Name() string { return "flat" }

func (p *FlatPolicy) Recipient(_, destination vestry.Address) (vestry.Address, error) {
	if destination.IsZero() {
		return vestry.Address{}, ErrInvalidDestination
	}
	return destination, nil
}

func (p *FlatPolicy) UsesPool() bool { return p.Pool }
