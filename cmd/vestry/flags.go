// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the state and log databases",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a yaml engine config, only read by init",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	blockFlag = cli.StringFlag{
		Name:  "block",
		Usage: "block number of the operation, defaults to head+1",
	}
	callerFlag = cli.StringFlag{
		Name:  "caller",
		Usage: "address of the account calling the operation",
	}
	toFlag = cli.StringFlag{
		Name:  "to",
		Usage: "destination address",
	}
	accountFlag = cli.StringFlag{
		Name:  "account",
		Usage: "account address",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "amount in decimal or 0x-prefixed hex base units",
	}
	tokenFlag = cli.StringFlag{
		Name:  "token",
		Value: "source",
		Usage: "token ledger (source|target)",
	}
	spenderFlag = cli.StringFlag{
		Name:  "spender",
		Usage: "spender address, defaults to the engine",
	}
	currentFlag = cli.StringFlag{
		Name:  "current",
		Usage: "block the query is made at, defaults to head",
	}
	hintFlag = cli.StringFlag{
		Name:  "hint",
		Usage: "0x-prefixed 4 byte checkpoint index hint",
	}
	kindFlag = cli.StringFlag{
		Name:  "kind",
		Value: "votes",
		Usage: "kind of logs (votes|grants)",
	}
	limitFlag = cli.Uint64Flag{
		Name:  "limit",
		Value: 100,
		Usage: "maximum number of logs to print",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8680",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of logs returned by /logs API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	enableOpsFlag = cli.BoolFlag{
		Name:  "api-ops",
		Usage: "accept state changing operations over POST /ops",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
)
