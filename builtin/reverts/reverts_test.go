// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRevert(t *testing.T) {
	errNothing := New("nothing to claim")

	wrapped := errors.Wrap(New("nothing to claim"), "claim")
	assert.ErrorIs(t, wrapped, errNothing)
	assert.NotErrorIs(t, wrapped, New("other"))
	assert.Equal(t, "claim: nothing to claim", wrapped.Error())

	assert.True(t, IsRevertErr(wrapped))
	assert.False(t, IsRevertErr(errors.New("io failure")))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr("not an error"))
}
