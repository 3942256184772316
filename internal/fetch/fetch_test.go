// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catctl/catctl/internal/record"
)

const catalog = `{
  "staticData": {"data": {"country_118": {"primaryLang": {
    "categories": {"Data": [
      {"id": 1, "title": "Dairy", "priority": 1.50, "Data": [
        {"id": 2, "title": "Milk", "Data": []},
        {"id": 3, "title": "Cheese", "Data": [
          {"id": 4, "title": "Hard"}
        ]}
      ]},
      {"id": 5, "title": "Bakery", "showOnMenu": true}
    ]},
    "products": [
      {"id": "P1", "sku": "A-1", "title": "Milk 1L", "price": 10.0, "tags": ["fresh", "cold"]},
      {"id": "P2", "sku": null, "price": 3}
    ]
  }}}
}`

func TestExtract(t *testing.T) {
	rows, err := Extract([]byte(catalog), "")
	require.NoError(t, err)

	cats := rows[record.Category]
	require.Len(t, cats, 5)

	ids := make([]any, len(cats))
	for i, c := range cats {
		ids[i], _ = c.Get("id")
	}
	assert.Equal(t, []any{json.Number("1"), json.Number("2"), json.Number("3"), json.Number("4"), json.Number("5")}, ids, "depth-first order")

	assert.Equal(t, []string{"id", "title", "priority", "parent_id"}, cats[0].Names(), "children are dropped and parent_id appended")
	parent, ok := cats[0].Get("parent_id")
	assert.True(t, ok)
	assert.Nil(t, parent)
	priority, _ := cats[0].Get("priority")
	assert.Equal(t, json.Number("1.50"), priority, "number text is preserved")

	parent, _ = cats[3].Get("parent_id")
	assert.Equal(t, json.Number("3"), parent)

	edges := rows[record.HierarchyEdge]
	want := [][2]string{{"1", "2"}, {"1", "3"}, {"3", "4"}}
	require.Len(t, edges, len(want))
	for i, e := range edges {
		p, _ := e.Get("parent_id")
		c, _ := e.Get("child_id")
		assert.Equal(t, json.Number(want[i][0]), p)
		assert.Equal(t, json.Number(want[i][1]), c)
	}

	products := rows[record.Product]
	require.Len(t, products, 2)
	tags, _ := products[0].Get("tags")
	assert.Equal(t, `["fresh","cold"]`, tags)
	sku, ok := products[1].Get("sku")
	assert.True(t, ok)
	assert.Nil(t, sku)

	// Every extracted kind ingests cleanly.
	for kind, rs := range rows {
		_, err := record.Ingest(kind, rs)
		assert.NoError(t, err, kind)
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		root string
	}{
		{"invalid json", `{"a":`, ""},
		{"missing root", `{"a":1}`, ""},
		{"categories not array", `{"r":{"categories":{"Data":{}}}}`, "r"},
		{"products not array", `{"r":{"products":"x"}}`, "r"},
		{"product not object", `{"r":{"products":[1]}}`, "r"},
		{"category not object", `{"r":{"categories":{"Data":["x"]}}}`, "r"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract([]byte(tt.raw), tt.root)
			assert.ErrorIs(t, err, ErrBadPayload)
		})
	}
}

func TestExtractEmpty(t *testing.T) {
	rows, err := Extract([]byte(`{"r":{}}`), "r")
	require.NoError(t, err)
	assert.Empty(t, rows[record.Category])
	assert.Empty(t, rows[record.Product])
	assert.Empty(t, rows[record.HierarchyEdge])
}

func TestDecoder(t *testing.T) {
	rows, err := Decoder("")([]byte(catalog))
	require.NoError(t, err)
	assert.Len(t, rows[record.Product], 2)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(catalog))
	}))
	defer srv.Close()

	src := &HTTPSource{URL: srv.URL + "/api", Client: srv.Client()}
	p, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog, string(p.Raw))
	assert.Len(t, p.Rows[record.Category], 5)
	assert.Equal(t, srv.URL+"/api", src.String())

	_, err = (&HTTPSource{URL: srv.URL + "/missing"}).Fetch(context.Background())
	assert.ErrorContains(t, err, "404")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx)
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw_data.json")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o600))

	p, err := (&FileSource{Path: path}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, p.Rows[record.HierarchyEdge], 3)

	_, err = (&FileSource{Path: path + ".nope"}).Fetch(context.Background())
	assert.Error(t, err)
}
