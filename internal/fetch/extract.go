// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/catctl/catctl/internal/record"
	"github.com/catctl/catctl/internal/snapshot"
)

// DefaultRoot is the gjson path of the catalog inside the upstream document.
const DefaultRoot = "staticData.data.country_118.primaryLang"

// childrenField holds nested categories in the upstream tree.
const childrenField = "Data"

// ErrBadPayload is returned when the raw document does not have the expected
// shape.
var ErrBadPayload = errors.New("unexpected payload")

// Extract pulls record rows out of the raw upstream document. Categories are
// read from <root>.categories.Data and flattened depth first; each category
// gets a parent_id (null at the top level) and every parent/child pair
// becomes a hierarchy edge. Products are read from <root>.products as is.
func Extract(raw []byte, root string) (map[record.Kind][]record.Row, error) {
	if root == "" {
		root = DefaultRoot
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid json", ErrBadPayload)
	}

	base := gjson.GetBytes(raw, root)
	if !base.Exists() {
		return nil, fmt.Errorf("%w: nothing at %s", ErrBadPayload, root)
	}

	rows := map[record.Kind][]record.Row{}

	cats := base.Get("categories." + childrenField)
	if cats.Exists() && !cats.IsArray() {
		return nil, fmt.Errorf("%w: categories.%s is %s, not an array", ErrBadPayload, childrenField, cats.Type)
	}
	if err := flatten(cats, nil, rows); err != nil {
		return nil, err
	}

	products := base.Get("products")
	if products.Exists() && !products.IsArray() {
		return nil, fmt.Errorf("%w: products is %s, not an array", ErrBadPayload, products.Type)
	}
	var err error
	products.ForEach(func(_, p gjson.Result) bool {
		var row record.Row
		if row, err = record.RowFromJSON(p); err != nil {
			err = fmt.Errorf("%w: product %d: %v", ErrBadPayload, len(rows[record.Product]), err)
			return false
		}
		rows[record.Product] = append(rows[record.Product], row)
		return true
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// flatten walks one level of the category tree.
func flatten(level gjson.Result, parent record.Value, rows map[record.Kind][]record.Row) error {
	var err error
	level.ForEach(func(_, c gjson.Result) bool {
		var row record.Row
		if row, err = record.RowFromJSON(c, childrenField); err != nil {
			err = fmt.Errorf("%w: category %d: %v", ErrBadPayload, len(rows[record.Category]), err)
			return false
		}
		row = row.Set("parent_id", parent)
		rows[record.Category] = append(rows[record.Category], row)

		id := record.ValueFromJSON(c.Get("id"))
		if parent != nil {
			rows[record.HierarchyEdge] = append(rows[record.HierarchyEdge], record.Row{
				{Name: "parent_id", Value: parent},
				{Name: "child_id", Value: id},
			})
		}

		if children := c.Get(childrenField); children.IsArray() {
			err = flatten(children, id, rows)
		}
		return err == nil
	})
	return err
}

// Decoder returns a snapshot.RawDecoder that extracts rows below root.
func Decoder(root string) snapshot.RawDecoder {
	return func(raw []byte) (map[record.Kind][]record.Row, error) {
		return Extract(raw, root)
	}
}
