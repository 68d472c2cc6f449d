// Copyright (c) 2025 The Vestry developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vestry-labs/vestry/runtime"
)

func loadScript(path string) ([]*runtime.Op, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read script")
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var ops []*runtime.Op
	if err := decoder.Decode(&ops); err != nil {
		return nil, errors.Wrap(err, "decode script")
	}
	return ops, nil
}

// replayAction applies a yaml script of operations in order, committing
// each one. An operation without a block runs at the block after the head.
func replayAction(ctx *cli.Context, e *env) error {
	if ctx.NArg() != 1 {
		return errors.New("usage: replay <script.yaml>")
	}
	ops, err := loadScript(ctx.Args().First())
	if err != nil {
		return err
	}

	bar := pb.New(len(ops)).
		SetMaxWidth(90).
		Start()
	defer func() { bar.NotPrint = true }()

	for i, op := range ops {
		if _, err := e.x.Execute(op); err != nil {
			return errors.WithMessagef(err, "step %d (%s)", i, op.Op)
		}
		bar.Increment()
	}
	bar.Finish()
	fmt.Printf("replayed %d steps, head %d\n", len(ops), e.repo.Head())
	return nil
}
