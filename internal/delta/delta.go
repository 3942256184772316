// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package delta

import (
	"github.com/catctl/catctl/internal/record"
)

// Change is a record present in both snapshots with at least one differing
// field.
type Change struct {
	Key      record.Key
	Fields   record.FieldChanges
	Previous record.Record
	Current  record.Record
}

// Delta is the comparison of one kind between a previous and a current
// snapshot. Added, Removed and Changed are disjoint and sorted by key.
// Unchanged records are never materialized.
type Delta struct {
	Kind    record.Kind
	Added   []record.Record
	Removed []record.Record
	Changed []Change
}

// Counts summarizes the delta sizes.
type Counts struct {
	Added   int `json:"added" yaml:"added"`
	Removed int `json:"removed" yaml:"removed"`
	Changed int `json:"changed" yaml:"changed"`
}

// Add sums two counts.
func (c Counts) Add(o Counts) Counts {
	return Counts{Added: c.Added + o.Added, Removed: c.Removed + o.Removed, Changed: c.Changed + o.Changed}
}

// Total is the number of classified keys.
func (c Counts) Total() int { return c.Added + c.Removed + c.Changed }

// Counts returns the size of each set.
func (d Delta) Counts() Counts {
	return Counts{Added: len(d.Added), Removed: len(d.Removed), Changed: len(d.Changed)}
}

// Empty reports whether nothing changed.
func (d Delta) Empty() bool { return d.Counts().Total() == 0 }

// Compute compares prev and curr, which must hold records of the same kind.
// A nil collection is treated as empty.
func Compute(kind record.Kind, prev, curr *record.Collection) Delta {
	d := Delta{Kind: kind}

	// Keys() is sorted, so every set below comes out in key order.
	for _, k := range curr.Keys() {
		cr, _ := curr.Get(k)
		pr, ok := prev.Get(k)
		if !ok {
			d.Added = append(d.Added, cr)
			continue
		}
		if changes := record.DiffFields(pr, cr); len(changes) > 0 {
			d.Changed = append(d.Changed, Change{Key: k, Fields: changes, Previous: pr, Current: cr})
		}
	}

	for _, k := range prev.Keys() {
		if !curr.Has(k) {
			pr, _ := prev.Get(k)
			d.Removed = append(d.Removed, pr)
		}
	}

	return d
}

// Source is anything that exposes per-kind collections, such as a snapshot.
type Source interface {
	Collection(kind record.Kind) *record.Collection
}

// ComputeAll runs Compute for every kind in canonical order.
func ComputeAll(prev, curr Source) []Delta {
	kinds := record.Kinds()
	out := make([]Delta, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, Compute(kind, prev.Collection(kind), curr.Collection(kind)))
	}
	return out
}

// Total sums the counts of several deltas.
func Total(deltas []Delta) Counts {
	var c Counts
	for _, d := range deltas {
		c = c.Add(d.Counts())
	}
	return c
}
