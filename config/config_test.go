// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"encoding/json"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestry-labs/vestry/builtin/migrator"
	"github.com/vestry-labs/vestry/vestry"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	policy, err := cfg.MigrationPolicy()
	require.NoError(t, err)
	assert.Equal(t, PolicyBonus, policy.Name())

	s := cfg.BonusSchedule()
	assert.Equal(t, big.NewInt(10), s.ConversionMultiplier)
	assert.Equal(t, uint32(100), s.Cliff)
	assert.Equal(t, uint32(200), s.Expiration)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
policy: flat
treasury: "0x00000000000000000000000000000000000000ff"
stalenessWindow: 5
conversionMultiplier: "0x0a"
flat:
  unvestedMultiplier: 40
  start: 100
  cliff: 150
  expiration: 200
  pool: true
  unassigned: "1000000000000000000000"
`))
	require.NoError(t, err)

	assert.Equal(t, PolicyFlat, cfg.Policy)
	assert.Equal(t, vestry.MustParseAddress("0x00000000000000000000000000000000000000ff"), cfg.Treasury)
	assert.Equal(t, Default().Engine, cfg.Engine)
	assert.Equal(t, uint32(5), cfg.StalenessWindow)
	assert.Equal(t, big.NewInt(10), cfg.ConversionMultiplier.Int())

	unassigned, _ := new(big.Int).SetString("1000000000000000000000", 10)
	assert.Equal(t, unassigned, cfg.Flat.Unassigned.Int())

	policy, err := cfg.MigrationPolicy()
	require.NoError(t, err)
	flat, ok := policy.(*migrator.FlatPolicy)
	require.True(t, ok)
	assert.True(t, flat.UsesPool())
	assert.Equal(t, uint64(40), flat.UnvestedMultiplier)
	assert.Equal(t, uint32(100), flat.Start)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		err  string
	}{
		{"unknown field", "foo: 1\n", "field foo not found"},
		{"unknown policy", "policy: linear\n", "unknown policy"},
		{"bad amount", "conversionMultiplier: ten\n", "invalid hex or decimal integer"},
		{"zero multiplier", "conversionMultiplier: \"0\"\n", "conversion multiplier must be positive"},
		{"zero treasury", "treasury: \"0x0000000000000000000000000000000000000000\"\n", "treasury address is zero"},
		{"same assets", "source: \"0x0000000000000000000000000000000000000001\"\ntarget: \"0x0000000000000000000000000000000000000001\"\n", "must differ"},
		{"cliff after expiration", "bonus:\n  cliff: 300\n", "cliff must not be after expiration"},
		{"bonus below one", "bonus:\n  fullBonusFactor: \"1\"\n", "at least one"},
		{"unvested above 100", "policy: flat\nflat:\n  unvestedMultiplier: 101\n", "must not exceed 100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Policy = PolicyFlat
	cfg.Flat.Pool = true
	cfg.Flat.Unassigned = NewAmount(big.NewInt(12345))
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestAmountJSON(t *testing.T) {
	var v struct {
		Amount *Amount `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"0x10"}`), &v))
	assert.Equal(t, big.NewInt(16), v.Amount.Int())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"16"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"sixteen"}`), &v))
}
