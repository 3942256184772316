// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"errors"
	"fmt"
	"slices"
)

// Collection holds the records of one kind within one snapshot, keyed by
// normalized key. Keys are unique; Add rejects duplicates.
type Collection struct {
	kind    Kind
	records map[Key]Record
}

// NewCollection returns an empty collection for kind.
func NewCollection(kind Kind) *Collection {
	return &Collection{kind: kind, records: make(map[Key]Record)}
}

// Kind returns the collection's kind.
func (c *Collection) Kind() Kind { return c.kind }

// Len returns the number of records.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Add inserts a record. A record of another kind or a key already present is
// an ingestion error.
func (c *Collection) Add(r Record) error {
	if r.Kind != c.kind {
		return &IngestionError{Kind: c.kind, Index: -1, Key: r.Key, Reason: fmt.Sprintf("record of kind %s", r.Kind)}
	}
	if _, ok := c.records[r.Key]; ok {
		return &IngestionError{Kind: c.kind, Index: -1, Key: r.Key, Reason: "duplicate key"}
	}
	c.records[r.Key] = r
	return nil
}

// Get returns the record stored under key.
func (c *Collection) Get(key Key) (Record, bool) {
	if c == nil {
		return Record{}, false
	}
	r, ok := c.records[key]
	return r, ok
}

// Has reports whether key is present.
func (c *Collection) Has(key Key) bool {
	_, ok := c.Get(key)
	return ok
}

// Keys returns all keys sorted with CompareKeys.
func (c *Collection) Keys() []Key {
	if c == nil {
		return nil
	}
	keys := make([]Key, 0, len(c.records))
	for k := range c.records {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareKeys)
	return keys
}

// Records returns all records in key order.
func (c *Collection) Records() []Record {
	keys := c.Keys()
	out := make([]Record, len(keys))
	for i, k := range keys {
		out[i] = c.records[k]
	}
	return out
}

// Ingest validates rows of one kind and builds a collection from them. The
// index of the offending row is reported on failure.
func Ingest(kind Kind, rows []Row) (*Collection, error) {
	if !kind.Valid() {
		return nil, &IngestionError{Kind: kind, Index: -1, Reason: "unknown kind"}
	}
	c := NewCollection(kind)
	for i, row := range rows {
		r, err := New(kind, row)
		if err == nil {
			err = c.Add(r)
		}
		if err != nil {
			var ie *IngestionError
			if errors.As(err, &ie) {
				ie.Index = i
			}
			return nil, err
		}
	}
	return c, nil
}
