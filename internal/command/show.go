// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/catctl/catctl/internal/meta"
	"github.com/catctl/catctl/internal/output"
	"github.com/catctl/catctl/internal/record"
	"github.com/catctl/catctl/internal/report"
)

// showCommandAction lists the records of one kind in a snapshot, the latest
// by default.
func showCommandAction(ctx context.Context, cmd *cli.Command) error {
	kind, err := record.ParseKind(cmd.String("kind"))
	if err != nil {
		return err
	}

	if cmd.Args().Len() > 1 {
		return fmt.Errorf("show takes at most one snapshot, got %d", cmd.Args().Len())
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

	if cmd.Bool("map") {
		cmd.Metadata["header"] = fmt.Sprintf("%s category map", handles[0])
		al, err := BuildAttrs(cmd, "parent", "children", "count")
		if err != nil {
			return err
		}
		return Emit(cmd, categoryMapRows(report.CategoryMap(snap.Collection(record.Category))), al)
	}

	recs := snap.Collection(kind).Records()

	if cmd.Bool("schema") {
		rows := make([]record.Row, len(recs))
		for i, r := range recs {
			rows[i] = r.Fields
		}
		output.DumpSchema(kind, rows, Writer(cmd))
		return nil
	}

	cmd.Metadata["header"] = fmt.Sprintf("%s %s", handles[0], kind.Plural())

	al, err := BuildAttrs(cmd, report.Columns(kind, recs)...)
	if err != nil {
		return err
	}
	return Emit(cmd, recs, al)
}

// categoryMapRow is one parent of the category map. Parent is empty for the
// top level.
type categoryMapRow struct {
	Parent   string   `json:"parent"`
	Children []string `json:"children"`
	Count    int      `json:"count"`
}

func categoryMapRows(m map[string][]string) []categoryMapRow {
	rows := make([]categoryMapRow, 0, len(m))
	for _, parent := range slices.Sorted(maps.Keys(m)) {
		rows = append(rows, categoryMapRow{Parent: parent, Children: m[parent], Count: len(m[parent])})
	}
	return rows
}

// showCommandBuilder constructs the cli.Command for "show".
func showCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "show",
		Usage:     "list the records of one kind in a snapshot",
		UsageText: "catctl show [SPEC] [--kind KIND | --map] [options]",
		Flags: []cli.Flag{
			NewKindFlag(string(record.Product)),
			newSchemaFlag(),
			&cli.BoolFlag{
				Name:        "map",
				Usage:       "list each category's children by name",
				HideDefault: true,
			},
		},
		Action: showCommandAction,
		Meta:   meta,
	}).Build()
}
