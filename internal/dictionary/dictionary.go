// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dictionary

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/record"
	"github.com/catctl/catctl/internal/report"
	"github.com/catctl/catctl/internal/snapshot"
)

const (
	ProductsFile   = "products_dictionary.csv"
	CategoriesFile = "categories_dictionary.csv"

	// TranslationColumn is never filled by catctl.
	TranslationColumn = "hebrew"
)

var (
	productColumns  = []string{"id", "sku", "english", TranslationColumn}
	categoryColumns = []string{"english", TranslationColumn}
)

// ErrBadDictionary is returned when an existing dictionary lacks a column
// needed to recognize its entries.
var ErrBadDictionary = errors.New("unrecognized dictionary")

// Result reports one dictionary file after a merge.
type Result struct {
	File     string `json:"file"`
	Existing int    `json:"existing"`
	Added    int    `json:"added"`
}

// Merge appends the products and categories of s that dir's dictionaries do
// not have yet. Products are identified by (id, sku) and categories by their
// English name. Missing files are created with a header.
func Merge(dir string, s *snapshot.Snapshot) ([]Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	products, err := merge(filepath.Join(dir, ProductsFile), productColumns, 2, productEntries(s))
	if err != nil {
		return nil, err
	}
	categories, err := merge(filepath.Join(dir, CategoriesFile), categoryColumns, 1, categoryEntries(s))
	if err != nil {
		return nil, err
	}
	return []Result{products, categories}, nil
}

// productEntries lists products with an id and a title, in key order.
func productEntries(s *snapshot.Snapshot) [][]string {
	var out [][]string
	for _, r := range s.Collection(record.Product).Records() {
		id := strings.TrimSpace(record.FormatValue(r.Get("id")))
		sku := strings.TrimSpace(record.FormatValue(r.Get("sku")))
		title := strings.TrimSpace(record.FormatValue(r.Get("title")))
		if id == "" || title == "" {
			continue
		}
		out = append(out, []string{id, sku, title, ""})
	}
	return out
}

// categoryEntries lists distinct category names, sorted.
func categoryEntries(s *snapshot.Snapshot) [][]string {
	var names []string
	for _, r := range s.Collection(record.Category).Records() {
		if name := strings.TrimSpace(report.CategoryLabel(r)); name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	names = slices.Compact(names)

	out := make([][]string, len(names))
	for i, n := range names {
		out[i] = []string{n, ""}
	}
	return out
}

// merge appends the entries of candidates whose first keyLen columns are not
// in the file yet. Existing rows are never rewritten.
func merge(path string, columns []string, keyLen int, candidates [][]string) (Result, error) {
	res := Result{File: path}

	seen, header, unterminated, err := load(path, columns[:keyLen])
	if err != nil {
		return res, err
	}
	res.Existing = len(seen)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if header == nil {
		_ = w.Write(columns)
		header = columns
	}
	for _, c := range candidates {
		k := entryKey(c[:keyLen])
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		_ = w.Write(arrange(header, columns, c))
		res.Added++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return res, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if buf.Len() == 0 {
		return res, nil
	}
	out := buf.Bytes()
	if unterminated {
		out = append([]byte{'\n'}, out...)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:mnd
	if err != nil {
		return res, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := f.Write(out); err != nil {
		f.Close()
		return res, fmt.Errorf("failed to append to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return res, fmt.Errorf("failed to append to %s: %w", path, err)
	}
	log.Debugf("dictionary %s: %d existing, %d added", path, res.Existing, res.Added)
	return res, nil
}

// load reads the keys already present in path. A missing or empty file has
// no keys and no header. unterminated is set when the file does not end in a
// newline, as after a hand edit.
func load(path string, keyCols []string) (seen map[string]struct{}, header []string, unterminated bool, err error) {
	seen = map[string]struct{}{}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return seen, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	unterminated = len(data) > 0 && data[len(data)-1] != '\n'

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	header, err = r.Read()
	if errors.Is(err, io.EOF) {
		return seen, nil, unterminated, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	header = slices.Clone(header)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idx := make([]int, len(keyCols))
	for i, c := range keyCols {
		if idx[i] = slices.Index(header, c); idx[i] < 0 {
			return nil, nil, false, fmt.Errorf("%w: %s has no %q column", ErrBadDictionary, path, c)
		}
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, false, fmt.Errorf("failed to read %s: %w", path, err)
		}
		key := make([]string, len(idx))
		for i, j := range idx {
			if j < len(row) {
				key[i] = strings.TrimSpace(row[j])
			}
		}
		seen[entryKey(key)] = struct{}{}
	}
	return seen, header, unterminated, nil
}

// arrange lays out values, given in columns order, in the order of the
// file's own header. Header columns catctl does not know stay empty.
func arrange(header, columns, values []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if j := slices.Index(columns, h); j >= 0 {
			out[i] = values[j]
		}
	}
	return out
}

func entryKey(parts []string) string {
	return strings.Join(parts, "\x00")
}
