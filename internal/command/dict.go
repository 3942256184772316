// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/catctl/catctl/internal/dictionary"
	"github.com/catctl/catctl/internal/meta"
)

var dictDefaultAttrs = []string{"file", "existing", "added"}

// dictCommandAction merges the names in a snapshot, the latest by default,
// into the translation dictionaries.
func dictCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 1 {
		return fmt.Errorf("dict takes at most one snapshot, got %d", cmd.Args().Len())
	}

	st, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}

	handles, err := ResolveSnapshots(ctx, st, cmd.Args().Slice()...)
	if err != nil {
		return err
	}

	snap, err := st.Read(ctx, handles[0])
	if err != nil {
		return err
	}

	results, err := dictionary.Merge(cmd.String("dir"), snap)
	if err != nil {
		return err
	}

	cmd.Metadata["header"] = fmt.Sprintf("%s into %s", handles[0], cmd.String("dir"))
	al, err := BuildAttrs(cmd, dictDefaultAttrs...)
	if err != nil {
		return err
	}
	return Emit(cmd, results, al)
}

// newDictDirFlag returns the --dict-dir flag shared by dict and run. ns picks
// the config namespace it is also read from.
func newDictDirFlag(ns, name, value, source string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    name,
		Usage:   "translation dictionary directory",
		Value:   value,
		Sources: cli.EnvVars("CATCTL_DICT_DIR"),
	}
	if source != "" {
		flag = NameSpacedValueChainFlagFromConfigFile(ns, source, flag, "dict_dir")
	}
	return flag
}

// dictCommandBuilder constructs the cli.Command for "dict".
func dictCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "dict",
		Usage:     "add new product and category names to the translation dictionaries",
		UsageText: "catctl dict [SPEC] [--dir DIR] [options]",
		Flags: []cli.Flag{
			newDictDirFlag("dict", "dir", "dictionary", meta.Config.Source),
		},
		Action: dictCommandAction,
		Meta:   meta,
	}).Build()
}
