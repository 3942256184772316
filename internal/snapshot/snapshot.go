// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"context"
	"time"

	"github.com/catctl/catctl/internal/record"
)

// Snapshot is an immutable capture of every record of every kind at one run.
// Collections must not be modified once the snapshot is built.
type Snapshot struct {
	Stamp       time.Time
	RunID       string
	Raw         []byte
	collections map[record.Kind]*record.Collection
}

// New builds a snapshot. Kinds missing from cols get an empty collection.
func New(stamp time.Time, runID string, raw []byte, cols map[record.Kind]*record.Collection) *Snapshot {
	s := &Snapshot{
		Stamp:       stamp.UTC(),
		RunID:       runID,
		Raw:         raw,
		collections: make(map[record.Kind]*record.Collection, len(record.Kinds())),
	}
	for _, kind := range record.Kinds() {
		c := cols[kind]
		if c == nil {
			c = record.NewCollection(kind)
		}
		s.collections[kind] = c
	}
	return s
}

// Ingest validates rows grouped by kind and builds a snapshot without a
// stamp. Any IngestionError aborts before the snapshot exists.
func Ingest(runID string, raw []byte, rows map[record.Kind][]record.Row) (*Snapshot, error) {
	cols := make(map[record.Kind]*record.Collection, len(rows))
	for _, kind := range record.Kinds() {
		c, err := record.Ingest(kind, rows[kind])
		if err != nil {
			return nil, err
		}
		cols[kind] = c
	}
	return New(time.Time{}, runID, raw, cols), nil
}

// WithStamp returns a copy of s stamped with t. Collections are shared, which
// is safe because they are never mutated.
func (s *Snapshot) WithStamp(t time.Time) *Snapshot {
	cp := *s
	cp.Stamp = t.UTC()
	return &cp
}

// Collection returns the records of one kind.
func (s *Snapshot) Collection(kind record.Kind) *record.Collection {
	return s.collections[kind]
}

// Count returns the number of records of one kind.
func (s *Snapshot) Count(kind record.Kind) int {
	return s.collections[kind].Len()
}

// Handle locates a persisted snapshot.
type Handle struct {
	// Name is the container name as found on storage.
	Name string
	// Stamp is the parsed container timestamp; it alone defines ordering.
	Stamp time.Time
	// RawDir is the raw sub-container name as found on storage ("raw", "Raw").
	RawDir string
	// Legacy marks containers written by the older tooling.
	Legacy bool
}

func (h Handle) String() string { return h.Name }

// RawDecoder extracts record rows from a combined raw blob. Stores use it to
// read legacy containers that carry no per-kind units.
type RawDecoder func(raw []byte) (map[record.Kind][]record.Row, error)

// Sink receives output files for one run container.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
	String() string
}

// Store persists snapshots in timestamp order.
type Store interface {
	// Write persists s under its stamp. A stamp already present fails with
	// ErrDuplicateTimestamp. A failed write leaves nothing List will return.
	Write(ctx context.Context, s *Snapshot) (Handle, error)
	// WriteNext stamps s from clock, strictly after the latest stored
	// snapshot, and writes it. Stamp allocation and the write share one lock.
	WriteNext(ctx context.Context, s *Snapshot, clock Clock) (Handle, *Snapshot, error)
	// List returns every snapshot sorted ascending by stamp.
	List(ctx context.Context) ([]Handle, error)
	// Previous returns the snapshot immediately before h, or false for the
	// earliest.
	Previous(ctx context.Context, h Handle) (Handle, bool, error)
	// Read loads a snapshot.
	Read(ctx context.Context, h Handle) (*Snapshot, error)
	// Sink returns where run output for h is written.
	Sink(h Handle) Sink
	String() string
}

// PreviousOf returns the handle immediately before h in handles, which must be
// sorted ascending. Membership is decided by stamp.
func PreviousOf(handles []Handle, h Handle) (Handle, bool, error) {
	for i, c := range handles {
		if c.Stamp.Equal(h.Stamp) {
			if i == 0 {
				return Handle{}, false, nil
			}
			return handles[i-1], true, nil
		}
	}
	return Handle{}, false, ErrNotFound
}

// Find returns the handle with the given stamp.
func Find(handles []Handle, stamp time.Time) (Handle, bool) {
	for _, h := range handles {
		if h.Stamp.Equal(stamp) {
			return h, true
		}
	}
	return Handle{}, false
}

// Latest returns the most recent handle.
func Latest(handles []Handle) (Handle, bool) {
	if len(handles) == 0 {
		return Handle{}, false
	}
	return handles[len(handles)-1], true
}
