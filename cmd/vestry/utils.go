// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"math/big"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vestry-labs/vestry/builtin/token"
	"github.com/vestry-labs/vestry/chain"
	"github.com/vestry-labs/vestry/config"
	"github.com/vestry-labs/vestry/log"
	"github.com/vestry-labs/vestry/logdb"
	"github.com/vestry-labs/vestry/lvldb"
	"github.com/vestry-labs/vestry/runtime"
	"github.com/vestry-labs/vestry/state"
	"github.com/vestry-labs/vestry/vestry"
)

const (
	stateDirName   = "state"
	logDBName      = "logs.db"
	configFileName = "config.yaml"
)

func initLogger(ctx *cli.Context) {
	lvl := log.FromLegacyLevel(ctx.GlobalInt(verbosityFlag.Name))
	fd := os.Stderr.Fd()
	useColor := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, lvl, useColor)))
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".vestry")
	}
	return "./vestry-data"
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// env is the opened data dir: databases, the head and the runtime over them.
type env struct {
	dir   string
	cfg   *config.Config
	db    *lvldb.LevelDB
	logDB *logdb.LogDB
	repo  *chain.Repository
	rt    *runtime.Runtime
	x     *runtime.Executor
}

// openEnv opens the data dir. Unless fresh, it must have been initialized.
func openEnv(ctx *cli.Context, fresh bool) (_ *env, err error) {
	dir := ctx.GlobalString(dataDirFlag.Name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}

	var cfg *config.Config
	cfgPath := filepath.Join(dir, configFileName)
	if fresh {
		cfg = config.Default()
		if path := ctx.GlobalString(configFlag.Name); path != "" {
			if cfg, err = config.Load(path); err != nil {
				return nil, err
			}
		}
	} else {
		if cfg, err = config.Load(cfgPath); err != nil {
			return nil, errors.WithMessage(err, "data dir not initialized, run init first")
		}
	}

	e := &env{dir: dir, cfg: cfg}
	defer func() {
		if err != nil {
			e.Close()
		}
	}()

	if e.db, err = lvldb.New(filepath.Join(dir, stateDirName), lvldb.Options{}); err != nil {
		return nil, errors.Wrap(err, "open state db")
	}
	if e.logDB, err = logdb.New(filepath.Join(dir, logDBName)); err != nil {
		return nil, errors.Wrap(err, "open log db")
	}
	if e.repo, err = chain.NewRepository(e.db); err != nil {
		return nil, err
	}
	if fresh && e.repo.Initialized() {
		return nil, errors.New("data dir already initialized")
	}
	if e.rt, err = runtime.New(state.New(e.db), cfg); err != nil {
		return nil, err
	}
	e.x = runtime.NewExecutor(e.rt, e.repo, e.logDB)
	return e, nil
}

func (e *env) Close() {
	if e.logDB != nil {
		e.logDB.Close()
	}
	if e.db != nil {
		e.db.Close()
	}
}

// block returns the block of the next operation: the block flag when set, else head+1.
func (e *env) block(ctx *cli.Context) (uint32, error) {
	s := ctx.String(blockFlag.Name)
	if s == "" {
		return e.repo.NextBlock(), nil
	}
	n, err := parseBlock(s)
	if err != nil {
		return 0, err
	}
	if e.repo.Initialized() && n < e.repo.Head() {
		return 0, fmt.Errorf("block %d is older than head %d", n, e.repo.Head())
	}
	return n, nil
}

func (e *env) token(ctx *cli.Context) (*token.Token, error) {
	return e.rt.Token(ctx.String(tokenFlag.Name))
}

func parseBlock(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.WithMessagef(err, "invalid block %q", s)
	}
	return uint32(n), nil
}

func parseAddress(ctx *cli.Context, flag cli.StringFlag) (vestry.Address, error) {
	s := ctx.String(flag.Name)
	if s == "" {
		return vestry.Address{}, fmt.Errorf("flag --%s is required", flag.Name)
	}
	addr, err := vestry.ParseAddress(s)
	if err != nil {
		return vestry.Address{}, errors.WithMessagef(err, "flag --%s", flag.Name)
	}
	return addr, nil
}

// parseOptionalAddress returns the zero address for an unset flag.
func parseOptionalAddress(ctx *cli.Context, flag cli.StringFlag) (vestry.Address, error) {
	if ctx.String(flag.Name) == "" {
		return vestry.Address{}, nil
	}
	return parseAddress(ctx, flag)
}

// parseAmount parses a decimal or hex amount, "max" is the infinite allowance.
func parseAmount(s string) (*big.Int, error) {
	if s == "max" {
		return new(big.Int).Set(token.MaxAllowance), nil
	}
	v, ok := math.ParseBig256(s)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func parseHint(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid hint")
	}
	return b, nil
}
