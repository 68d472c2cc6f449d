// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"gopkg.in/yaml.v3"
)

// Amount is a big integer written in yaml as a decimal or 0x-prefixed hex string.
type Amount math.HexOrDecimal256

func NewAmount(v *big.Int) *Amount {
	return (*Amount)(new(big.Int).Set(v))
}

// Int returns a copy of the amount, nil for a nil amount.
func (a *Amount) Int() *big.Int {
	if a == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(a))
}

// UnmarshalText implements encoding.TextUnmarshaler, for json bodies.
func (a *Amount) UnmarshalText(text []byte) error {
	bigint, ok := math.ParseBig256(string(text))
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", text)
	}
	*a = Amount(*bigint)
	return nil
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte((*big.Int)(&a).String()), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	bigint, ok := math.ParseBig256(node.Value)
	if !ok {
		return fmt.Errorf("line %d: invalid hex or decimal integer %q", node.Line, node.Value)
	}
	*a = Amount(*bigint)
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (a Amount) MarshalYAML() (any, error) {
	return (*big.Int)(&a).String(), nil
}
