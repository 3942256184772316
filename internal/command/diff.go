// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/catctl/catctl/internal/delta"
	"github.com/catctl/catctl/internal/differ"
	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/meta"
	"github.com/catctl/catctl/internal/record"
	"github.com/catctl/catctl/internal/run"
	"github.com/catctl/catctl/internal/snapshot"
)

var diffDefaultAttrs = []string{"kind", "set", "key", "field", "old", "new"}

// pickSpec opens the interactive picker instead of naming snapshots.
const pickSpec = "+"

// diffRow is one line of a delta listing. Added and removed records produce
// one row each; changed records produce one row per changed field.
type diffRow struct {
	Kind  string       `json:"kind"`
	Set   string       `json:"set"`
	Key   string       `json:"key"`
	Field string       `json:"field,omitempty"`
	Old   record.Value `json:"old"`
	New   record.Value `json:"new"`
}

// diffCommandAction compares two snapshots. With no specs the latest is
// compared to the one before it; with one spec, that snapshot is compared to
// its predecessor.
func diffCommandAction(ctx context.Context, cmd *cli.Command) error {
	st, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}

	pair, err := diffPair(ctx, st, cmd.Args().Slice())
	if err != nil || pair == nil {
		return err
	}
	log.Debugf("diff %s %s", pair[0], pair[1])

	if cmd.Bool("raw") {
		left, err := st.Read(ctx, pair[0])
		if err != nil {
			return err
		}
		right, err := st.Read(ctx, pair[1])
		if err != nil {
			return err
		}
		return differ.Diff(Writer(cmd), left.Raw, right.Raw, differ.Options{
			Ignore: cmd.StringSlice("ignore"),
			Color:  cmd.Bool("color"),
		})
	}

	deltas, err := run.Compare(ctx, st, pair[0], pair[1])
	if err != nil {
		return err
	}
	if deltas, err = filterKind(deltas, cmd.String("kind")); err != nil {
		return err
	}

	c := delta.Total(deltas)
	cmd.Metadata["header"] = fmt.Sprintf("%s vs %s", pair[0], pair[1])
	cmd.Metadata["footer"] = fmt.Sprintf("%d added, %d removed, %d changed", c.Added, c.Removed, c.Changed)

	al, err := BuildAttrs(cmd, diffDefaultAttrs...)
	if err != nil {
		return err
	}
	return Emit(cmd, diffRows(deltas), al)
}

// filterKind keeps only the delta for the named kind. An empty name keeps
// everything.
func filterKind(deltas []delta.Delta, name string) ([]delta.Delta, error) {
	if name == "" {
		return deltas, nil
	}
	kind, err := record.ParseKind(name)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(deltas, func(d delta.Delta) bool { return d.Kind != kind }), nil
}

// diffRows flattens deltas in kind order, then added, removed and changed.
func diffRows(deltas []delta.Delta) []diffRow {
	rows := []diffRow{}
	for _, d := range deltas {
		kind := string(d.Kind)
		for _, r := range d.Added {
			rows = append(rows, diffRow{Kind: kind, Set: "added", Key: r.Key.String()})
		}
		for _, r := range d.Removed {
			rows = append(rows, diffRow{Kind: kind, Set: "removed", Key: r.Key.String()})
		}
		for _, ch := range d.Changed {
			for _, fc := range ch.Fields {
				rows = append(rows, diffRow{
					Kind:  kind,
					Set:   "changed",
					Key:   ch.Key.String(),
					Field: fc.Field,
					Old:   fc.Old,
					New:   fc.New,
				})
			}
		}
	}
	return rows
}

// diffPair resolves the two snapshots to compare, oldest first. A nil pair
// with no error means the picker was abandoned.
func diffPair(ctx context.Context, st snapshot.Store, specs []string) ([]snapshot.Handle, error) {
	handles, err := st.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(handles) < 2 {
		return nil, fmt.Errorf("need at least two snapshots in %s, found %d", st, len(handles))
	}

	switch {
	case len(specs) == 1 && specs[0] == pickSpec:
		return differ.SelectSnapshots(handles)

	case len(specs) == 0:
		specs = []string{"~1", "~0"}

	case len(specs) == 1:
		h, err := snapshot.Resolve(handles, specs[0])
		if err != nil {
			return nil, err
		}
		prev, ok, err := snapshot.PreviousOf(handles, h[0])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s is the earliest snapshot", h[0])
		}
		return []snapshot.Handle{prev, h[0]}, nil

	case len(specs) > 2:
		return nil, fmt.Errorf("at most two snapshots can be compared, got %d", len(specs))
	}

	pair, err := snapshot.Resolve(handles, specs...)
	if err != nil {
		return nil, err
	}
	snapshot.SortHandles(pair)
	return pair, nil
}

// diffCommandBuilder constructs the cli.Command for "diff".
func diffCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "diff",
		Usage:     "show the delta between two snapshots",
		UsageText: "catctl diff [SPEC [SPEC] | +] [options]",
		Flags: []cli.Flag{
			NewKindFlag(""),
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "diff the combined raw documents instead of records",
			},
			&cli.StringSliceFlag{
				Name:  "ignore",
				Usage: "top-level keys left out of a --raw diff",
			},
		},
		Action: diffCommandAction,
		Meta:   meta,
	}).Build()
}
