// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"bytes"
	"fmt"
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vestry-labs/vestry/builtin/migrator"
	"github.com/vestry-labs/vestry/builtin/vesting"
	"github.com/vestry-labs/vestry/vestry"
)

const (
	PolicyBonus = "bonus"
	PolicyFlat  = "flat"
)

// Config is the engine configuration.
type Config struct {
	Policy          string         `yaml:"policy"`
	Engine          vestry.Address `yaml:"engine"`
	Source          vestry.Address `yaml:"source"`
	Target          vestry.Address `yaml:"target"`
	Treasury        vestry.Address `yaml:"treasury"`
	Admin           vestry.Address `yaml:"admin"` // holds the mint role of both assets
	StalenessWindow uint32         `yaml:"stalenessWindow"`

	ConversionMultiplier *Amount `yaml:"conversionMultiplier"`

	Bonus Bonus `yaml:"bonus"`
	Flat  Flat  `yaml:"flat"`
}

// Bonus holds the constants of the bonus-decay policy.
type Bonus struct {
	FullBonusFactor *Amount `yaml:"fullBonusFactor"` // scaled by 1e18
	Cliff           uint32  `yaml:"cliff"`
	Expiration      uint32  `yaml:"expiration"`
}

// Flat holds the constants of the flat-vesting policy.
type Flat struct {
	UnvestedMultiplier uint64  `yaml:"unvestedMultiplier"` // percent
	Start              uint32  `yaml:"start"`
	Cliff              uint32  `yaml:"cliff"`
	Expiration         uint32  `yaml:"expiration"`
	Pool               bool    `yaml:"pool"`
	Unassigned         *Amount `yaml:"unassigned"` // initial pool
}

// Default returns the default configuration: the bonus policy with a
// 100 block cliff and a 200 block expiration.
func Default() *Config {
	return &Config{
		Policy:               PolicyBonus,
		Engine:               vestry.BytesToAddress([]byte("migrator")),
		Source:               vestry.BytesToAddress([]byte("source")),
		Target:               vestry.BytesToAddress([]byte("target")),
		Treasury:             vestry.BytesToAddress([]byte("treasury")),
		Admin:                vestry.BytesToAddress([]byte("admin")),
		StalenessWindow:      vestry.DefaultStalenessWindow,
		ConversionMultiplier: NewAmount(big.NewInt(10)),
		Bonus: Bonus{
			FullBonusFactor: NewAmount(big.NewInt(1008333333333333333)),
			Cliff:           100,
			Expiration:      200,
		},
		Flat: Flat{
			UnvestedMultiplier: 40,
			Cliff:              100,
			Expiration:         200,
			Unassigned:         NewAmount(new(big.Int)),
		},
	}
}

// Load reads the yaml file at path over the defaults. Unknown fields are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse decodes yaml data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o600), "write config")
}

func (c *Config) Validate() error {
	for name, addr := range map[string]vestry.Address{
		"engine":   c.Engine,
		"source":   c.Source,
		"target":   c.Target,
		"treasury": c.Treasury,
		"admin":    c.Admin,
	} {
		if addr.IsZero() {
			return fmt.Errorf("invalid config: %s address is zero", name)
		}
	}
	if c.Source == c.Target {
		return errors.New("invalid config: source and target must differ")
	}

	switch c.Policy {
	case PolicyBonus:
		return errors.WithMessage(c.BonusSchedule().Validate(), "invalid config")
	case PolicyFlat:
		if c.Flat.Unassigned != nil && c.Flat.Unassigned.Int().Sign() < 0 {
			return errors.New("invalid config: unassigned pool is negative")
		}
		return errors.WithMessage(c.FlatSchedule().Validate(), "invalid config")
	default:
		return fmt.Errorf("invalid config: unknown policy %q", c.Policy)
	}
}

func (c *Config) BonusSchedule() *vesting.BonusSchedule {
	return &vesting.BonusSchedule{
		ConversionMultiplier: c.ConversionMultiplier.Int(),
		FullBonusFactor:      c.Bonus.FullBonusFactor.Int(),
		Cliff:                c.Bonus.Cliff,
		Expiration:           c.Bonus.Expiration,
	}
}

func (c *Config) FlatSchedule() *vesting.FlatSchedule {
	return &vesting.FlatSchedule{
		ConversionMultiplier: c.ConversionMultiplier.Int(),
		UnvestedMultiplier:   c.Flat.UnvestedMultiplier,
		Start:                c.Flat.Start,
		Cliff:                c.Flat.Cliff,
		Expiration:           c.Flat.Expiration,
	}
}

// MigrationPolicy builds the engine policy selected by Policy.
func (c *Config) MigrationPolicy() (migrator.Policy, error) {
	switch c.Policy {
	case PolicyBonus:
		return migrator.NewBonusPolicy(c.BonusSchedule()), nil
	case PolicyFlat:
		return migrator.NewFlatPolicy(c.FlatSchedule(), c.Flat.Pool), nil
	default:
		return nil, fmt.Errorf("unknown policy %q", c.Policy)
	}
}
