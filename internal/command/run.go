// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/catctl/catctl/internal/delta"
	"github.com/catctl/catctl/internal/dictionary"
	"github.com/catctl/catctl/internal/fetch"
	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/meta"
	"github.com/catctl/catctl/internal/record"
	"github.com/catctl/catctl/internal/report"
	"github.com/catctl/catctl/internal/run"
)

var runDefaultAttrs = []string{"kind", "added", "removed", "changed", "records"}

// runSummary is one row of the run summary, per kind.
type runSummary struct {
	Kind    string `json:"kind"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
	Changed int    `json:"changed"`
	Records int    `json:"records"`
}

// runCommandAction fetches the catalog, stores a snapshot and writes the
// delta against the previous one.
func runCommandAction(ctx context.Context, cmd *cli.Command) error {
	src, err := newSource(cmd)
	if err != nil {
		return err
	}

	st, err := OpenStore(ctx, cmd)
	if err != nil {
		return err
	}

	formats := make([]report.Format, 0, len(cmd.StringSlice("format")))
	for _, f := range cmd.StringSlice("format") {
		formats = append(formats, report.Format(f))
	}

	runner := &run.Runner{
		Source: src,
		Store:  st,
		Writer: &report.FileWriter{Formats: formats, SkipExport: cmd.Bool("no-export")},
	}

	led, err := OpenLedger(ctx, cmd)
	if err != nil {
		return err
	}
	// Only set a non-nil ledger so the interface stays nil when disabled.
	if led != nil {
		defer led.Close()
		runner.Ledger = led
	}

	res, err := runner.Run(ctx)
	if res == nil {
		return err
	}

	var serr *report.SerializationError
	if errors.As(err, &serr) {
		log.WithError(err).Error("report failed, snapshot kept")
	}

	if dir := cmd.String("dict-dir"); dir != "" {
		results, derr := dictionary.Merge(dir, res.Snapshot)
		if derr != nil {
			log.WithError(derr).Error("dictionary merge failed")
			err = errors.Join(err, derr)
		}
		for _, r := range results {
			log.Infof("dictionary %s: %d added", r.File, r.Added)
		}
	}

	counts := make(map[record.Kind]delta.Counts, len(res.Deltas))
	for _, d := range res.Deltas {
		counts[d.Kind] = d.Counts()
	}

	rows := make([]runSummary, 0, len(record.Kinds()))
	for _, kind := range record.Kinds() {
		c := counts[kind]
		rows = append(rows, runSummary{
			Kind:    string(kind),
			Added:   c.Added,
			Removed: c.Removed,
			Changed: c.Changed,
			Records: res.Snapshot.Count(kind),
		})
	}

	if res.FirstRun {
		cmd.Metadata["header"] = fmt.Sprintf("%s (first run)", res.Handle)
	} else {
		cmd.Metadata["header"] = fmt.Sprintf("%s vs %s", res.Handle, res.Previous)
	}

	al, aerr := BuildAttrs(cmd, runDefaultAttrs...)
	if aerr != nil {
		return aerr
	}
	if eerr := Emit(cmd, rows, al); eerr != nil {
		return eerr
	}

	return err
}

// newSource picks the catalog source: --file wins over --url.
func newSource(cmd *cli.Command) (fetch.Source, error) {
	root := cmd.String("source-root")
	if f := cmd.String("file"); f != "" {
		return &fetch.FileSource{Path: f, Root: root}, nil
	}
	if u := cmd.String("url"); u != "" {
		return &fetch.HTTPSource{URL: u, Root: root}, nil
	}
	return nil, errors.New("one of --url or --file is required")
}

// runCommandBuilder constructs the cli.Command for "run".
func runCommandBuilder(meta meta.Meta) *cli.Command {
	url := &cli.StringFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Usage:   "catalog endpoint",
		Sources: cli.EnvVars("CATCTL_URL"),
	}
	if meta.Config.Source != "" {
		url = NameSpacedValueChainFlagFromConfigFile("run", meta.Config.Source, url)
	}

	return (&CommandBuilder{
		Name:      "run",
		Usage:     "fetch the catalog, snapshot it and report the delta",
		UsageText: "catctl run [--url URL | --file FILE] [options]",
		Flags: []cli.Flag{
			url,
			&cli.StringFlag{
				Name:  "file",
				Usage: "read the catalog from a saved document instead of --url",
			},
			&cli.StringSliceFlag{
				Name:  "format",
				Usage: "report formats",
				Value: []string{string(report.JSON), string(report.CSV)},
				Validator: func(value []string) error {
					return FlagValidators(value, FormatValidator)
				},
			},
			&cli.BoolFlag{
				Name:  "no-export",
				Usage: "skip the export of the current snapshot",
			},
			NewLedgerFlag("run", meta.Config.Source),
			newDictDirFlag("run", "dict-dir", "", meta.Config.Source),
		},
		Action: runCommandAction,
		Meta:   meta,
	}).Build()
}
