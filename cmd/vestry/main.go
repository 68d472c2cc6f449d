// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "vestry"
	app.Usage = "Migration and vesting engine"
	app.Flags = []cli.Flag{
		dataDirFlag,
		configFlag,
		verbosityFlag,
	}
	app.Commands = []cli.Command{
		{
			Name:   "init",
			Usage:  "initialize the data dir from the default config or --config",
			Action: withEnv(true, initAction),
		},
		{
			Name:   "mint",
			Usage:  "mint source or target asset",
			Flags:  []cli.Flag{tokenFlag, toFlag, amountFlag, callerFlag, blockFlag},
			Action: mutate(mintAction),
		},
		{
			Name:   "burn",
			Usage:  "burn an amount of an account, minter only",
			Flags:  []cli.Flag{tokenFlag, accountFlag, amountFlag, callerFlag, blockFlag},
			Action: mutate(burnAction),
		},
		{
			Name:   "approve",
			Usage:  "approve a spender, the engine by default",
			Flags:  []cli.Flag{tokenFlag, callerFlag, spenderFlag, amountFlag, blockFlag},
			Action: mutate(approveAction),
		},
		{
			Name:   "migrate",
			Usage:  "migrate source asset into a vesting grant",
			Flags:  []cli.Flag{callerFlag, toFlag, amountFlag, blockFlag},
			Action: mutate(migrateAction),
		},
		{
			Name:   "claim",
			Usage:  "claim the withdrawable part of a grant and close it",
			Flags:  []cli.Flag{callerFlag, blockFlag},
			Action: mutate(claimAction),
		},
		{
			Name:   "delegate",
			Usage:  "delegate the voting power of a grant",
			Flags:  []cli.Flag{callerFlag, toFlag, blockFlag},
			Action: mutate(delegateAction),
		},
		{
			Name:   "update-power",
			Usage:  "re-sync the voting power of a grant with its schedule",
			Flags:  []cli.Flag{accountFlag, blockFlag},
			Action: mutate(updatePowerAction),
		},
		{
			Name:   "grant",
			Usage:  "show the grant of an account",
			Flags:  []cli.Flag{accountFlag, blockFlag},
			Action: query(grantAction),
		},
		{
			Name:   "votes",
			Usage:  "query the vote power of an account",
			Flags:  []cli.Flag{accountFlag, blockFlag, currentFlag, hintFlag},
			Action: query(votesAction),
		},
		{
			Name:   "balance",
			Usage:  "show the balances of an account",
			Flags:  []cli.Flag{accountFlag},
			Action: query(balanceAction),
		},
		{
			Name:   "logs",
			Usage:  "print stored vote changes or grant events",
			Flags:  []cli.Flag{kindFlag, accountFlag, limitFlag},
			Action: withEnv(false, logsAction),
		},
		{
			Name:   "head",
			Usage:  "show the head block and supplies",
			Action: query(headAction),
		},
		{
			Name:      "replay",
			Usage:     "apply a yaml script of operations",
			ArgsUsage: "<script.yaml>",
			Action:    withEnv(false, replayAction),
		},
		{
			Name:  "serve",
			Usage: "serve the HTTP API, read-only unless --api-ops",
			Flags: []cli.Flag{
				apiAddrFlag,
				apiCorsFlag,
				apiLogsLimitFlag,
				enableAPILogsFlag,
				enableOpsFlag,
				pprofFlag,
				enableMetricsFlag,
				metricsAddrFlag,
			},
			Action: withEnv(false, serveAction),
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
