// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"encoding/csv"
	"slices"

	"github.com/catctl/catctl/internal/delta"
	"github.com/catctl/catctl/internal/record"
)

type csvEncoder struct{}

// Columns returns the CSV header for recs: the kind's key fields, then the
// fields of the first record, then any later fields in order of appearance.
func Columns(kind record.Kind, recs []record.Record) []string {
	cols := slices.Clone(kind.KeyFields())
	for _, r := range recs {
		for _, name := range r.Fields.Names() {
			if !slices.Contains(cols, name) {
				cols = append(cols, name)
			}
		}
	}
	return cols
}

func (csvEncoder) records(kind record.Kind, recs []record.Record) ([]byte, error) {
	cols := Columns(kind, recs)
	rows := make([][]string, 0, len(recs)+1)
	rows = append(rows, cols)
	for _, r := range recs {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = record.FormatValue(r.Get(c))
		}
		rows = append(rows, row)
	}
	return writeCSV(rows)
}

func (csvEncoder) changes(_ record.Kind, changes []delta.Change) ([]byte, error) {
	rows := [][]string{{"key", "field", "old_value", "new_value"}}
	for _, c := range changes {
		for _, fc := range c.Fields {
			rows = append(rows, []string{c.Key.String(), fc.Field, record.FormatValue(fc.Old), record.FormatValue(fc.New)})
		}
	}
	return writeCSV(rows)
}

// productFieldChanges lists every changed product field alongside the
// product's identifying columns.
func productFieldChanges(changes []delta.Change) ([]byte, error) {
	rows := [][]string{{"id", "sku", "title", "field", "old_value", "new_value"}}
	for _, c := range changes {
		id := record.FormatValue(c.Current.Get("id"))
		sku := record.FormatValue(c.Current.Get("sku"))
		title := record.FormatValue(c.Current.Get("title"))
		for _, fc := range c.Fields {
			rows = append(rows, []string{id, sku, title, fc.Field, record.FormatValue(fc.Old), record.FormatValue(fc.New)})
		}
	}
	return writeCSV(rows)
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
