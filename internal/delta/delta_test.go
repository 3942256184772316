// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package delta

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catctl/catctl/internal/record"
)

func collection(t *testing.T, kind record.Kind, rows ...[]any) *record.Collection {
	t.Helper()
	var rs []record.Row
	for _, r := range rows {
		row, err := record.NewRow(r...)
		require.NoError(t, err)
		rs = append(rs, row)
	}
	c, err := record.Ingest(kind, rs)
	require.NoError(t, err)
	return c
}

func TestComputeCategoryAdded(t *testing.T) {
	prev := collection(t, record.Category, []any{"id", 10, "name", "Dairy"})
	curr := collection(t, record.Category,
		[]any{"id", 10, "name", "Dairy"},
		[]any{"id", 11, "name", "Bakery"},
	)

	d := Compute(record.Category, prev, curr)

	require.Len(t, d.Added, 1)
	assert.Equal(t, record.NewKey("11"), d.Added[0].Key)
	assert.Equal(t, "Bakery", d.Added[0].Get("name"))
	assert.Empty(t, d.Removed)
	assert.Empty(t, d.Changed)
}

func TestComputeProductPriceChanged(t *testing.T) {
	prev := collection(t, record.Product, []any{"id", 5, "sku", "A1", "price", json.Number("10.0")})
	curr := collection(t, record.Product, []any{"id", 5, "sku", "A1", "price", json.Number("12.5")})

	d := Compute(record.Product, prev, curr)

	assert.Empty(t, d.Added)
	assert.Empty(t, d.Removed)
	require.Len(t, d.Changed, 1)
	c := d.Changed[0]
	assert.Equal(t, record.NewKey("5"), c.Key)
	assert.Equal(t, record.FieldChanges{{Field: "price", Old: json.Number("10.0"), New: json.Number("12.5")}}, c.Fields)
	assert.NotContains(t, c.Fields.Fields(), "sku")
}

func TestComputeEdgeRemoved(t *testing.T) {
	prev := collection(t, record.HierarchyEdge, []any{"parent_id", 1, "child_id", 2})
	curr := collection(t, record.HierarchyEdge)

	d := Compute(record.HierarchyEdge, prev, curr)

	require.Len(t, d.Removed, 1)
	assert.Equal(t, "(1,2)", d.Removed[0].Key.String())
	assert.Empty(t, d.Added)
	assert.Empty(t, d.Changed)
}

func TestComputeEmptySides(t *testing.T) {
	full := collection(t, record.Product, []any{"id", 1}, []any{"id", 2})

	d := Compute(record.Product, nil, full)
	assert.Len(t, d.Added, 2)

	d = Compute(record.Product, full, record.NewCollection(record.Product))
	assert.Len(t, d.Removed, 2)

	d = Compute(record.Product, nil, nil)
	assert.True(t, d.Empty())
}

func TestComputeIdentityByNormalizedKey(t *testing.T) {
	prev := collection(t, record.Product, []any{"id", "SKU-1", "title", "Milk"})
	curr := collection(t, record.Product, []any{"id", " sku-1 ", "title", "Milk"})

	d := Compute(record.Product, prev, curr)
	assert.True(t, d.Empty(), "case and whitespace in the key must not create a delta")
}

func TestComputeIdenticalNeverReported(t *testing.T) {
	rows := [][]any{{"id", 1, "a", "x"}, {"id", 2, "a", "y"}}
	d := Compute(record.Category, collection(t, record.Category, rows...), collection(t, record.Category, rows...))
	assert.True(t, d.Empty())
}

func TestComputeSortedNumerically(t *testing.T) {
	prev := collection(t, record.Product)
	curr := collection(t, record.Product, []any{"id", 10}, []any{"id", 9}, []any{"id", 100})

	d := Compute(record.Product, prev, curr)

	var keys []string
	for _, r := range d.Added {
		keys = append(keys, r.Key.String())
	}
	assert.Equal(t, []string{"9", "10", "100"}, keys)
}

// randomCollection builds a collection over a small key space so that
// random pairs overlap, drop and change keys.
func randomCollection(t *testing.T, rng *rand.Rand) *record.Collection {
	var rows [][]any
	for id := 0; id < 40; id++ {
		if rng.Intn(3) == 0 {
			continue
		}
		rows = append(rows, []any{"id", id, "price", json.Number(fmt.Sprintf("%d.%d", rng.Intn(3), rng.Intn(2))), "title", []string{"a", "b"}[rng.Intn(2)]})
	}
	return collection(t, record.Product, rows...)
}

func TestComputePartitionInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		prev := randomCollection(t, rng)
		curr := randomCollection(t, rng)
		d := Compute(record.Product, prev, curr)

		seen := map[record.Key]string{}
		mark := func(k record.Key, set string) {
			other, dup := seen[k]
			require.False(t, dup, "key %s in both %s and %s", k, other, set)
			seen[k] = set
		}
		for _, r := range d.Added {
			mark(r.Key, "added")
			assert.False(t, prev.Has(r.Key))
			assert.True(t, curr.Has(r.Key))
		}
		for _, r := range d.Removed {
			mark(r.Key, "removed")
			assert.True(t, prev.Has(r.Key))
			assert.False(t, curr.Has(r.Key))
		}
		for _, c := range d.Changed {
			mark(c.Key, "changed")
			assert.NotEmpty(t, c.Fields)
		}

		// Every key of the union is either classified or identical.
		for _, c := range []*record.Collection{prev, curr} {
			for _, k := range c.Keys() {
				if _, ok := seen[k]; ok {
					continue
				}
				pr, _ := prev.Get(k)
				cr, _ := curr.Get(k)
				assert.True(t, prev.Has(k) && curr.Has(k) && record.FieldsEqual(pr, cr), "key %s unclassified", k)
			}
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	prev := randomCollection(t, rng)
	curr := randomCollection(t, rng)

	first, err := json.Marshal(Compute(record.Product, prev, curr))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(Compute(record.Product, prev, curr))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

type fakeSnapshot map[record.Kind]*record.Collection

func (f fakeSnapshot) Collection(k record.Kind) *record.Collection { return f[k] }

func TestComputeAll(t *testing.T) {
	prev := fakeSnapshot{
		record.Category:      collection(t, record.Category, []any{"id", 10, "name", "Dairy"}),
		record.HierarchyEdge: collection(t, record.HierarchyEdge, []any{"parent_id", 1, "child_id", 2}),
	}
	curr := fakeSnapshot{
		record.Category: collection(t, record.Category, []any{"id", 10, "name", "Dairy"}, []any{"id", 11, "name", "Bakery"}),
		record.Product:  collection(t, record.Product, []any{"id", 5}),
	}

	deltas := ComputeAll(prev, curr)
	require.Len(t, deltas, 3)
	assert.Equal(t, record.Category, deltas[0].Kind)
	assert.Equal(t, record.Product, deltas[1].Kind)
	assert.Equal(t, record.HierarchyEdge, deltas[2].Kind)
	assert.Equal(t, Counts{Added: 2, Removed: 1}, Total(deltas))
}
