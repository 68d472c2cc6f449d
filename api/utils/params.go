// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vestry-labs/vestry/vestry"
)

// Head returns the latest committed block number.
type Head func() uint32

// View runs fn against committed state, excluded from any change in flight.
type View func(fn func() error) error

// ParseAddress parses the address path or query parameter called name.
func ParseAddress(name, s string) (vestry.Address, error) {
	addr, err := vestry.ParseAddress(s)
	if err != nil {
		return vestry.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

// ParseBlock parses a block number query parameter, def when empty.
func ParseBlock(name, s string, def uint32) (uint32, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return uint32(n), nil
}

// ParseHex parses an optional 0x-prefixed hex query parameter.
func ParseHex(name, s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, BadRequest(errors.WithMessage(err, name))
	}
	return b, nil
}

// Amount converts an amount for a response body.
func Amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}
