// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"context"
	"fmt"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/catctl/catctl/internal/delta"
	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/record"
	"github.com/catctl/catctl/internal/snapshot"
)

// Dir is the output directory inside a run container.
const Dir = "delta"

// Format is an output encoding.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
)

// Sets names the three delta sets in output order.
var Sets = []string{"added", "removed", "changed"}

// SerializationError reports an output file that could not be encoded or
// stored. The snapshot it belongs to is unaffected.
type SerializationError struct {
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Writer turns a run's deltas into output files.
type Writer interface {
	Write(ctx context.Context, sink snapshot.Sink, curr *snapshot.Snapshot, deltas []delta.Delta) error
}

// FileWriter writes the delta of every kind plus an export of the current
// snapshot, in each configured format. Formats are written concurrently.
type FileWriter struct {
	Formats []Format
	// SkipExport leaves out the current-snapshot export files.
	SkipExport bool
}

var _ Writer = (*FileWriter)(nil)

// NewFileWriter returns a FileWriter for JSON and CSV.
func NewFileWriter() *FileWriter {
	return &FileWriter{Formats: []Format{JSON, CSV}}
}

// Name is the output base name for a kind.
func Name(kind record.Kind) string {
	switch kind {
	case record.HierarchyEdge:
		return "categories_hierarchy"
	default:
		return kind.Plural()
	}
}

// Write implements Writer. deltas may be empty, as on a first run, in which
// case only the export is written.
func (w *FileWriter) Write(ctx context.Context, sink snapshot.Sink, curr *snapshot.Snapshot, deltas []delta.Delta) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, f := range w.Formats {
		enc, err := encoderFor(f)
		if err != nil {
			return err
		}
		g.Go(func() error {
			for _, file := range w.files(f, enc, curr, deltas) {
				if err := gctx.Err(); err != nil {
					return err
				}
				data, err := file.encode()
				if err == nil {
					err = sink.Put(gctx, file.path, data)
				}
				if err != nil {
					return &SerializationError{Path: path.Join(sink.String(), file.path), Err: err}
				}
				log.Tracef("wrote %s", file.path)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Debugf("report written to %s", sink)
	return nil
}

// outFile is one file to produce. Encoding is deferred so a failure is
// reported against its path.
type outFile struct {
	path   string
	encode func() ([]byte, error)
}

func (w *FileWriter) files(f Format, enc encoder, curr *snapshot.Snapshot, deltas []delta.Delta) []outFile {
	dir := path.Join(Dir, string(f))
	name := func(base string) string { return path.Join(dir, base+"."+string(f)) }

	var out []outFile
	for _, d := range deltas {
		base := Name(d.Kind)
		out = append(out,
			outFile{name(base + "_added"), func() ([]byte, error) { return enc.records(d.Kind, d.Added) }},
			outFile{name(base + "_removed"), func() ([]byte, error) { return enc.records(d.Kind, d.Removed) }},
			outFile{name(base + "_changed"), func() ([]byte, error) { return enc.changes(d.Kind, d.Changed) }},
		)
		if d.Kind == record.Product && f == CSV {
			out = append(out, outFile{name("products_field_changes"), func() ([]byte, error) {
				return productFieldChanges(d.Changed)
			}})
		}
	}

	if !w.SkipExport && curr != nil {
		for _, kind := range record.Kinds() {
			out = append(out, outFile{name(Name(kind)), func() ([]byte, error) {
				return enc.records(kind, curr.Collection(kind).Records())
			}})
		}
		if f == JSON {
			out = append(out, outFile{name(CategoryMapFile), func() ([]byte, error) {
				return marshal(CategoryMap(curr.Collection(record.Category)))
			}})
		}
	}
	return out
}

// encoder renders record lists and change lists in one format.
type encoder interface {
	records(kind record.Kind, recs []record.Record) ([]byte, error)
	changes(kind record.Kind, changes []delta.Change) ([]byte, error)
}

func encoderFor(f Format) (encoder, error) {
	switch f {
	case JSON:
		return jsonEncoder{}, nil
	case CSV:
		return csvEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", f)
	}
}
