// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/record"
)

// File is one encoded unit of a snapshot, named relative to the raw
// sub-container.
type File struct {
	Name string
	Data []byte
}

// Marshal encodes s into its units. The manifest is always the last file so
// stores can publish it last.
func Marshal(s *Snapshot) ([]File, error) {
	m := Manifest{RunID: s.RunID, Stamp: s.Stamp}
	files := make([]File, 0, len(record.Kinds())+2)

	for _, kind := range record.Kinds() {
		data, err := encodeCollection(s.Collection(kind))
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", kind.Plural(), err)
		}
		name := UnitName(kind)
		files = append(files, File{Name: name, Data: data})
		m.Units = append(m.Units, ManifestUnit{
			Name:     name,
			Kind:     kind,
			Records:  s.Count(kind),
			Checksum: Checksum(data),
		})
	}

	if s.Raw != nil {
		files = append(files, File{Name: RawFile, Data: s.Raw})
		m.Units = append(m.Units, ManifestUnit{Name: RawFile, Checksum: Checksum(s.Raw)})
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	files = append(files, File{Name: ManifestFile, Data: append(data, '\n')})

	return files, nil
}

// encodeCollection writes one record per line inside a JSON array, in key
// order.
func encodeCollection(c *record.Collection) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, r := range c.Records() {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := r.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.Key, err)
		}
		buf.WriteString("\n  ")
		buf.Write(data)
	}
	buf.WriteString("\n]\n")
	return buf.Bytes(), nil
}

// ReadFunc loads a unit by name. A missing unit must yield an error wrapping
// ErrNotFound.
type ReadFunc func(name string) ([]byte, error)

// Unmarshal reads the snapshot located by h through read. Units are verified
// against the manifest. Legacy containers have no manifest and are decoded
// from their raw unit with decode.
func Unmarshal(h Handle, read ReadFunc, decode RawDecoder) (*Snapshot, error) {
	data, err := read(ManifestFile)
	if errors.Is(err, ErrNotFound) && h.Legacy {
		return unmarshalLegacy(h, read, decode)
	}
	if err != nil {
		return nil, err
	}

	m, err := parseManifest(data)
	if err != nil {
		return nil, err
	}
	if !m.Stamp.Equal(h.Stamp) {
		return nil, fmt.Errorf("%w: manifest stamp %s does not match %s", ErrCorruptSnapshot, FormatStamp(m.Stamp), h.Name)
	}

	cols := make(map[record.Kind]*record.Collection, len(record.Kinds()))
	for _, kind := range record.Kinds() {
		name := UnitName(kind)
		data, err := read(name)
		if err != nil {
			return nil, err
		}
		if err := m.Verify(name, data); err != nil {
			return nil, err
		}
		c, err := decodeCollection(kind, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, name, err)
		}
		cols[kind] = c
	}

	var raw []byte
	if _, ok := m.Unit(RawFile); ok {
		if raw, err = read(RawFile); err != nil {
			return nil, err
		}
		if err := m.Verify(RawFile, raw); err != nil {
			return nil, err
		}
	}

	return New(h.Stamp, m.RunID, raw, cols), nil
}

func unmarshalLegacy(h Handle, read ReadFunc, decode RawDecoder) (*Snapshot, error) {
	if decode == nil {
		return nil, fmt.Errorf("%w: %s has no manifest and no raw decoder is configured", ErrCorruptSnapshot, h.Name)
	}
	log.Debugf("reading legacy snapshot %s", h.Name)

	raw, err := read(RawFile)
	if err != nil {
		return nil, err
	}
	rows, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, RawFile, err)
	}
	s, err := Ingest("", raw, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, h.Name, err)
	}
	return s.WithStamp(h.Stamp), nil
}

func decodeCollection(kind record.Kind, data []byte) (*record.Collection, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid json")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, fmt.Errorf("expected array, got %s", doc.Type)
	}

	var rows []record.Row
	var rowErr error
	doc.ForEach(func(_, v gjson.Result) bool {
		row, err := record.RowFromJSON(v)
		if err != nil {
			rowErr = err
			return false
		}
		rows = append(rows, row)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return record.Ingest(kind, rows)
}
