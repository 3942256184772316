// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package local

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catctl/catctl/internal/record"
	"github.com/catctl/catctl/internal/snapshot"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Next() time.Time { return c.t }

func newStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(t.TempDir())
	require.NoError(t, err)
	return st
}

func testSnapshot(t *testing.T, stamp time.Time, price string) *snapshot.Snapshot {
	t.Helper()
	row := func(pairs ...any) record.Row {
		r, err := record.NewRow(pairs...)
		require.NoError(t, err)
		return r
	}
	s, err := snapshot.Ingest("run", []byte(`{"ok":1}`), map[record.Kind][]record.Row{
		record.Category:      {row("id", 1, "title", "Dairy")},
		record.Product:       {row("id", "P1", "sku", "A-1", "price", json.Number(price))},
		record.HierarchyEdge: {row("parent_id", 1, "child_id", 2)},
	})
	require.NoError(t, err)
	return s.WithStamp(stamp)
}

var t0 = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	h, err := st.Write(ctx, testSnapshot(t, t0, "10.0"))
	require.NoError(t, err)
	assert.Equal(t, snapshot.FormatStamp(t0), h.Name)
	assert.DirExists(t, filepath.Join(st.Root, h.Name, "raw"))
	assert.FileExists(t, filepath.Join(st.Root, h.Name, "raw", "manifest.json"))

	got, err := st.Read(ctx, h)
	require.NoError(t, err)
	assert.True(t, t0.Equal(got.Stamp))
	assert.Equal(t, "run", got.RunID)
	p, ok := got.Collection(record.Product).Get(record.NewKey("p1"))
	require.True(t, ok)
	assert.Equal(t, json.Number("10.0"), p.Get("price"))
	assert.Equal(t, 1, got.Count(record.HierarchyEdge))
}

func TestWriteDuplicateTimestamp(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	_, err := st.Write(ctx, testSnapshot(t, t0, "10.0"))
	require.NoError(t, err)

	_, err = st.Write(ctx, testSnapshot(t, t0, "12.5"))
	assert.ErrorIs(t, err, snapshot.ErrDuplicateTimestamp)

	handles, err := st.List(ctx)
	require.NoError(t, err)
	assert.Len(t, handles, 1)

	got, err := st.Read(ctx, handles[0])
	require.NoError(t, err)
	p, _ := got.Collection(record.Product).Get(record.NewKey("p1"))
	assert.Equal(t, json.Number("10.0"), p.Get("price"), "first write is untouched")
}

func TestWriteNextIsStrictlyIncreasing(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	clock := fixedClock{t0}

	h1, s1, err := st.WriteNext(ctx, testSnapshot(t, time.Time{}, "1"), clock)
	require.NoError(t, err)
	h2, s2, err := st.WriteNext(ctx, testSnapshot(t, time.Time{}, "2"), clock)
	require.NoError(t, err)

	assert.True(t, h2.Stamp.After(h1.Stamp))
	assert.True(t, s1.Stamp.Equal(h1.Stamp))
	assert.True(t, s2.Stamp.Equal(h2.Stamp))

	prev, ok, err := st.Previous(ctx, h2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, h1, prev)

	_, ok, err = st.Previous(ctx, h1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteNextConcurrent(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	clock := fixedClock{t0}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := st.WriteNext(ctx, testSnapshot(t, time.Time{}, "1"), clock)
			assert.NoError(t, err, "writer %d", i)
		}()
	}
	wg.Wait()

	handles, err := st.List(ctx)
	require.NoError(t, err)
	assert.Len(t, handles, 8)
}

func TestFailedWriteLeavesNothing(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	bad, err := record.New(record.Product, record.Row{
		{Name: "id", Value: "P9"},
		{Name: "price", Value: json.Number("not-a-number")},
	})
	require.NoError(t, err)
	c := record.NewCollection(record.Product)
	require.NoError(t, c.Add(bad))
	s := snapshot.New(t0, "run", nil, map[record.Kind]*record.Collection{record.Product: c})

	_, err = st.Write(ctx, s)
	require.Error(t, err)

	handles, err := st.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, handles)

	entries, err := os.ReadDir(st.Root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), tmpPrefix), "temp container %s is left behind", e.Name())
	}
}

func TestListSkipsIncompleteAndForeign(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	_, err := st.Write(ctx, testSnapshot(t, t0, "1"))
	require.NoError(t, err)

	mk := func(parts ...string) {
		require.NoError(t, os.MkdirAll(filepath.Join(append([]string{st.Root}, parts...)...), 0o755))
	}
	mk(".tmp-abc", "raw")
	mk("notes")
	mk(snapshot.FormatStamp(t0.Add(time.Hour)), "raw") // no manifest
	mk(snapshot.FormatStamp(t0.Add(2 * time.Hour)))    // no raw dir
	require.NoError(t, os.WriteFile(filepath.Join(st.Root, "README"), []byte("x"), 0o600))

	handles, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, handles, 1)
	assert.True(t, t0.Equal(handles[0].Stamp))
}

func TestListOrderIsByStamp(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	// Written newest first so directory order cannot be relied on.
	for _, d := range []time.Duration{3, 1, 2, 0} {
		_, err := st.Write(ctx, testSnapshot(t, t0.Add(d*time.Hour), "1"))
		require.NoError(t, err)
	}

	handles, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, handles, 4)
	for i := 1; i < len(handles); i++ {
		assert.True(t, handles[i].Stamp.After(handles[i-1].Stamp))
	}
}

func TestRawDirIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	h, err := st.Write(ctx, testSnapshot(t, t0, "1"))
	require.NoError(t, err)
	require.NoError(t, os.Rename(filepath.Join(st.Root, h.Name, "raw"), filepath.Join(st.Root, h.Name, "Raw")))

	handles, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, handles, 1)
	assert.Equal(t, "Raw", handles[0].RawDir)

	got, err := st.Read(ctx, snapshot.Handle{Name: h.Name, Stamp: h.Stamp})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count(record.Product))
}

func TestLegacyContainer(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	name := "2024-12-31_23-59-59"
	dir := filepath.Join(st.Root, name, "Raw")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw_data.json"), []byte(`{"legacy":true}`), 0o600))

	handles, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, handles, 1)
	assert.True(t, handles[0].Legacy)

	_, err = st.Read(ctx, handles[0])
	assert.ErrorIs(t, err, snapshot.ErrCorruptSnapshot, "no decoder configured")

	st.Decoder = func([]byte) (map[record.Kind][]record.Row, error) {
		row, err := record.NewRow("id", 5, "title", "Legacy")
		return map[record.Kind][]record.Row{record.Category: {row}}, err
	}
	got, err := st.Read(ctx, handles[0])
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count(record.Category))
	assert.Equal(t, []byte(`{"legacy":true}`), got.Raw)

	// A new run still sorts after the legacy one.
	h, _, err := st.WriteNext(ctx, testSnapshot(t, time.Time{}, "1"), fixedClock{t0})
	require.NoError(t, err)
	prev, ok, err := st.Previous(ctx, h)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, name, prev.Name)
}

func TestReadMissing(t *testing.T) {
	st := newStore(t)
	_, err := st.Read(context.Background(), snapshot.Handle{Name: snapshot.FormatStamp(t0), Stamp: t0})
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}

func TestSink(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	h, err := st.Write(ctx, testSnapshot(t, t0, "1"))
	require.NoError(t, err)

	sink := st.Sink(h)
	require.NoError(t, sink.Put(ctx, "delta/csv/products_added.csv", []byte("id\n")))
	data, err := os.ReadFile(filepath.Join(st.Root, h.Name, "delta", "csv", "products_added.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id\n", string(data))
	assert.Equal(t, filepath.Join(st.Root, h.Name), sink.String())

	// Output files never make the snapshot look different.
	got, err := st.Read(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count(record.Product))
}

func TestNew(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	root := filepath.Join(t.TempDir(), "a", "b")
	st, err := New(root, WithDecoder(nil))
	require.NoError(t, err)
	assert.DirExists(t, root)
	assert.Equal(t, "local:"+root, st.String())
}

func TestCanceledContext(t *testing.T) {
	st := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.Write(ctx, testSnapshot(t, t0, "1"))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = st.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
