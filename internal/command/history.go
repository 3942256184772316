// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/catctl/catctl/internal/meta"
)

var historyDefaultAttrs = []string{"created_at", "stamp", "status", "added", "removed", "changed", "error"}

// historyCommandAction lists recorded runs, newest first.
func historyCommandAction(ctx context.Context, cmd *cli.Command) error {
	led, err := OpenLedger(ctx, cmd)
	if err != nil {
		return err
	}
	if led == nil {
		return errors.New("the ledger is disabled")
	}
	defer led.Close()

	entries, err := led.Entries(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	al, err := BuildAttrs(cmd, historyDefaultAttrs...)
	if err != nil {
		return err
	}
	return Emit(cmd, entries, al)
}

// historyCommandBuilder constructs the cli.Command for "history".
func historyCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "history",
		Usage:     "list recorded runs",
		UsageText: "catctl history [options]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "limit entries returned, 0 for all",
				Value:   20,
			},
			NewLedgerFlag("history", meta.Config.Source),
		},
		Action: historyCommandAction,
		Meta:   meta,
	}).Build()
}
