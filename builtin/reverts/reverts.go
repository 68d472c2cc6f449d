// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert marks a domain failure that aborts the whole operation.
// The carried reason is stable and safe to show to callers.
type ErrRevert struct {
	reason string
}

func New(reason string) *ErrRevert {
	return &ErrRevert{
		reason: reason,
	}
}

func (e *ErrRevert) Error() string {
	return e.reason
}

// Is matches reverts by reason, so sentinel reverts work with errors.Is.
func (e *ErrRevert) Is(target error) bool {
	var t *ErrRevert
	if errors.As(target, &t) && t != nil && e != nil {
		return t.reason == e.reason
	}
	return false
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	if errors.As(e, &ve) {
		return ve != nil
	}
	return false
}
