// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package run

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catctl/catctl/internal/delta"
	"github.com/catctl/catctl/internal/fetch"
	"github.com/catctl/catctl/internal/ledger"
	"github.com/catctl/catctl/internal/record"
	"github.com/catctl/catctl/internal/report"
	"github.com/catctl/catctl/internal/snapshot"
	"github.com/catctl/catctl/internal/store/local"
)

// queueSource returns its payloads in order.
type queueSource struct {
	payloads []*fetch.Payload
	err      error
}

func (s *queueSource) Fetch(context.Context) (*fetch.Payload, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := s.payloads[0]
	s.payloads = s.payloads[1:]
	return p, nil
}

func (s *queueSource) String() string { return "queue" }

type failingWriter struct{}

func (failingWriter) Write(context.Context, snapshot.Sink, *snapshot.Snapshot, []delta.Delta) error {
	return &report.SerializationError{Path: "delta/json/x.json", Err: errors.New("disk full")}
}

type failingLedger struct{}

func (failingLedger) Record(context.Context, ledger.Entry) error { return errors.New("locked") }

// stepClock advances one second per call.
type stepClock struct{ t time.Time }

func (c *stepClock) Next() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func row(t *testing.T, pairs ...any) record.Row {
	t.Helper()
	r, err := record.NewRow(pairs...)
	require.NoError(t, err)
	return r
}

func payload(t *testing.T, price string, withCategory2, withEdge bool) *fetch.Payload {
	rows := map[record.Kind][]record.Row{
		record.Category: {row(t, "id", json.Number("1"), "name", "Food", "parent_id", nil)},
		record.Product: {row(t, "id", json.Number("100"), "sku", "A-1", "title", "Milk 1L",
			"price", json.Number(price))},
	}
	if withCategory2 {
		rows[record.Category] = append(rows[record.Category],
			row(t, "id", json.Number("2"), "name", "Dairy", "parent_id", json.Number("1")))
	}
	if withEdge {
		rows[record.HierarchyEdge] = []record.Row{row(t, "parent_id", json.Number("1"), "child_id", json.Number("2"))}
	}
	return &fetch.Payload{Raw: []byte(`{"v":1}`), Rows: rows}
}

func newRunner(t *testing.T, payloads ...*fetch.Payload) (*Runner, *local.Store) {
	t.Helper()
	st, err := local.New(t.TempDir())
	require.NoError(t, err)
	return &Runner{
		Source: &queueSource{payloads: payloads},
		Store:  st,
		Writer: report.NewFileWriter(),
		Clock:  &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}, st
}

func TestRunFirstRun(t *testing.T) {
	ctx := context.Background()
	r, st := newRunner(t, payload(t, "10.0", false, false))

	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.FirstRun)
	assert.Empty(t, res.Deltas)
	assert.NotEmpty(t, res.RunID)

	handles, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, handles, 1)
	assert.Equal(t, res.Handle.Name, handles[0].Name)

	// Exports only.
	_, err = os.Stat(filepath.Join(st.Root, res.Handle.Name, report.Dir, "csv", "products.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(st.Root, res.Handle.Name, report.Dir, "csv", "products_added.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunScenarios(t *testing.T) {
	ctx := context.Background()
	r, st := newRunner(t,
		payload(t, "10.0", false, true),
		payload(t, "12.5", true, false),
	)
	l, err := ledger.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer l.Close()
	r.Ledger = l

	first, err := r.Run(ctx)
	require.NoError(t, err)
	second, err := r.Run(ctx)
	require.NoError(t, err)

	assert.False(t, second.FirstRun)
	assert.Equal(t, first.Handle.Name, second.Previous.Name)
	assert.True(t, second.Handle.Stamp.After(first.Handle.Stamp))
	require.Len(t, second.Deltas, 3)

	cats, prods, edges := second.Deltas[0], second.Deltas[1], second.Deltas[2]

	require.Len(t, cats.Added, 1)
	assert.Equal(t, record.NewKey("2"), cats.Added[0].Key)
	assert.Empty(t, cats.Removed)
	assert.Empty(t, cats.Changed)

	require.Len(t, prods.Changed, 1)
	ch := prods.Changed[0]
	require.Len(t, ch.Fields, 1, "sku is unchanged and absent from the detail")
	assert.Equal(t, "price", ch.Fields[0].Field)
	assert.Equal(t, json.Number("10.0"), ch.Fields[0].Old)
	assert.Equal(t, json.Number("12.5"), ch.Fields[0].New)

	require.Len(t, edges.Removed, 1)
	assert.Equal(t, record.NewKey("1", "2"), edges.Removed[0].Key)

	assert.Equal(t, delta.Counts{Added: 1, Removed: 1, Changed: 1}, second.Counts())

	_, err = os.Stat(filepath.Join(st.Root, second.Handle.Name, report.Dir, "csv", "products_field_changes.csv"))
	assert.NoError(t, err)

	entries, err := l.Entries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.StatusOK, entries[0].Status)
	assert.Equal(t, first.Handle.Name, entries[0].Previous)
	assert.Equal(t, 1, entries[0].Changed)
	assert.Equal(t, ledger.StatusFirstRun, entries[1].Status)
}

func TestRunIdenticalInputWithInvalidUTF8(t *testing.T) {
	ctx := context.Background()
	doc := filepath.Join(t.TempDir(), "catalog.json")
	raw := "{\"staticData\":{\"data\":{\"country_118\":{\"primaryLang\":{" +
		"\"categories\":{\"Data\":[{\"id\":1,\"name\":\"Dairy \xfe\"}]}," +
		"\"products\":[{\"id\":5,\"sku\":\"M-1\",\"title\":\"Milk \xff\",\"price\":4.9}]}}}}}"
	require.NoError(t, os.WriteFile(doc, []byte(raw), 0o644))

	r, _ := newRunner(t)
	r.Source = &fetch.FileSource{Path: doc}

	_, err := r.Run(ctx)
	require.NoError(t, err)
	second, err := r.Run(ctx)
	require.NoError(t, err)

	require.False(t, second.FirstRun)
	assert.Zero(t, second.Counts().Total(), "identical input reported a change: %+v", second.Deltas)

	p, ok := second.Snapshot.Collection(record.Product).Get(record.NewKey("5"))
	require.True(t, ok)
	assert.Equal(t, "Milk \uFFFD", p.Get("title"))
}

func TestRunReportFailureKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	r, st := newRunner(t, payload(t, "10.0", false, false), payload(t, "11", false, false))
	require.NoError(t, func() error { _, err := r.Run(ctx); return err }())

	l, err := ledger.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer l.Close()
	r.Ledger = l
	r.Writer = failingWriter{}

	res, err := r.Run(ctx)
	require.Error(t, err)
	var se *report.SerializationError
	require.ErrorAs(t, err, &se)
	require.NotNil(t, res)
	assert.Len(t, res.Deltas, 3)

	handles, err := st.List(ctx)
	require.NoError(t, err)
	assert.Len(t, handles, 2)

	_, err = st.Read(ctx, res.Handle)
	assert.NoError(t, err)

	entries, err := l.Entries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.StatusReportFailed, entries[0].Status)
	assert.Contains(t, entries[0].Error, "disk full")
}

func TestRunIngestionErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	bad := payload(t, "10.0", false, false)
	bad.Rows[record.Product] = append(bad.Rows[record.Product], bad.Rows[record.Product][0])
	r, st := newRunner(t, bad)

	_, err := r.Run(ctx)
	var ie *record.IngestionError
	require.ErrorAs(t, err, &ie)

	handles, err := st.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, handles)
}

func TestRunFetchError(t *testing.T) {
	r, _ := newRunner(t)
	r.Source = &queueSource{err: errors.New("unreachable")}
	_, err := r.Run(context.Background())
	assert.ErrorContains(t, err, "unreachable")
}

func TestRunLedgerFailureNotFatal(t *testing.T) {
	r, _ := newRunner(t, payload(t, "10.0", false, false))
	r.Ledger = failingLedger{}
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.FirstRun)
}

func TestRunNeedsSourceAndStore(t *testing.T) {
	_, err := (&Runner{}).Run(context.Background())
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	ctx := context.Background()
	r, st := newRunner(t,
		payload(t, "10.0", false, false),
		payload(t, "10", false, false),
		payload(t, "12.5", true, false),
	)
	r.Writer = nil
	for range 3 {
		_, err := r.Run(ctx)
		require.NoError(t, err)
	}
	handles, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, handles, 3)

	deltas, err := Compare(ctx, st, handles[0], handles[1])
	require.NoError(t, err)
	assert.Equal(t, 0, delta.Total(deltas).Total(), "10.0 equals 10")

	deltas, err = Compare(ctx, st, handles[0], handles[2])
	require.NoError(t, err)
	assert.Equal(t, delta.Counts{Added: 1, Changed: 1}, delta.Total(deltas))

	_, err = Compare(ctx, st, handles[0], snapshot.Handle{Name: "missing", RawDir: "raw"})
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}
