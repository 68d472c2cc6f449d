// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package migrator

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/builtin/checkpoints"
	"github.com/vestry-labs/vestry/builtin/reverts"
)

var (
	ErrInvalidAmount          = reverts.New("migrator: invalid amount")
	ErrInvalidDestination     = reverts.New("migrator: invalid destination")
	ErrExistingGrantFound     = reverts.New("migrator: existing grant found")
	ErrSourceTransferFailed   = reverts.New("migrator: source transfer failed")
	ErrInsufficientFunds      = reverts.New("migrator: insufficient funds")
	ErrNothingToClaim         = reverts.New("migrator: nothing to claim")
	ErrTransferFailed         = reverts.New("migrator: transfer failed")
	ErrTreasuryTransferFailed = reverts.New("migrator: treasury transfer failed")
	ErrNoGrant                = reverts.New("migrator: no grant")

	// ErrStaleQuery is returned by vote power queries inside the staleness window.
	ErrStaleQuery = checkpoints.ErrStale
)

// transferFailure classifies a failed asset transfer as kind.
// Failures which are not rejections by the ledger propagate unclassified.
func transferFailure(kind *reverts.ErrRevert, cause error) error {
	if !reverts.IsRevertErr(cause) {
		return errors.Wrap(cause, kind.Error())
	}
	return fmt.Errorf("%w: %w", kind, cause)
}
