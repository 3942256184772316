// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/catctl/catctl/internal/log"
)

// Identical is printed when two documents do not differ.
const Identical = "The snapshots are identical."

// Options tunes a raw diff.
type Options struct {
	// Ignore lists top-level keys left out of the rendered left document.
	Ignore []string
	// Color enables ANSI coloring.
	Color bool
}

// Diff compares two raw JSON documents, such as the combined form saved with
// each snapshot, and writes an annotated rendering of the differences to w.
func Diff(w io.Writer, left, right []byte, opts Options) error {
	if len(left) == 0 || len(right) == 0 {
		return fmt.Errorf("nothing to compare: document sizes %d and %d", len(left), len(right))
	}
	log.Debugf("raw diff: sizes=%d,%d", len(left), len(right))

	delta, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return fmt.Errorf("failed to compare documents: %w", err)
	}

	if !delta.Modified() {
		fmt.Fprintln(w, Identical)
		return nil
	}

	var jdoc map[string]any
	if err := json.Unmarshal(left, &jdoc); err != nil {
		return fmt.Errorf("failed to unmarshal document: %w", err)
	}
	for _, key := range opts.Ignore {
		delete(jdoc, key)
	}

	f := formatter.NewAsciiFormatter(jdoc, formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       opts.Color,
	})
	out, err := f.Format(delta)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, out)
	return nil
}
