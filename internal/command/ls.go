// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/catctl/catctl/internal/meta"
	"github.com/catctl/catctl/internal/record"
	"github.com/catctl/catctl/internal/snapshot"
)

var lsDefaultAttrs = []string{"index", "name", "age", "categories", "products", "edges", "run_id"}

// lsReaders bounds concurrent snapshot reads.
const lsReaders = 4

// lsEntry is one listed snapshot.
type lsEntry struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Stamp      string `json:"stamp"`
	Age        string `json:"age"`
	Legacy     bool   `json:"legacy"`
	RunID      string `json:"run_id,omitempty"`
	Categories *int   `json:"categories,omitempty"`
	Products   *int   `json:"products,omitempty"`
	Edges      *int   `json:"edges,omitempty"`
}

// lsCommandAction lists the stored snapshots, oldest first.
func lsCommandAction(ctx context.Context, cmd *cli.Command) error {
	st, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}

	handles, err := st.List(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	entries := make([]lsEntry, len(handles))
	for i, h := range handles {
		entries[i] = lsEntry{
			Index:  i + 1,
			Name:   h.Name,
			Stamp:  h.Stamp.Format(time.RFC3339),
			Age:    humanize.RelTime(h.Stamp, now, "ago", "from now"),
			Legacy: h.Legacy,
		}
	}

	if !cmd.Bool("quick") {
		if err := fillCounts(ctx, st, handles, entries); err != nil {
			return err
		}
	}

	cmd.Metadata["footer"] = fmt.Sprintf("%d snapshots in %s", len(handles), st)

	al, err := BuildAttrs(cmd, lsDefaultAttrs...)
	if err != nil {
		return err
	}
	return Emit(cmd, entries, al)
}

// fillCounts reads every snapshot to fill in its run id and record counts.
func fillCounts(ctx context.Context, st snapshot.Store, handles []snapshot.Handle, entries []lsEntry) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lsReaders)

	for i, h := range handles {
		g.Go(func() error {
			snap, err := st.Read(gctx, h)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", h, err)
			}
			cats := snap.Count(record.Category)
			prods := snap.Count(record.Product)
			edges := snap.Count(record.HierarchyEdge)
			entries[i].RunID = snap.RunID
			entries[i].Categories = &cats
			entries[i].Products = &prods
			entries[i].Edges = &edges
			return nil
		})
	}

	return g.Wait()
}

// lsCommandBuilder constructs the cli.Command for "ls".
func lsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "ls",
		Usage:     "list snapshots",
		UsageText: "catctl ls [options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quick",
				Aliases: []string{"q"},
				Usage:   "list names only, without reading each snapshot",
			},
		},
		Action: lsCommandAction,
		Meta:   meta,
	}).Build()
}
