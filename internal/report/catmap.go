// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"github.com/catctl/catctl/internal/record"
)

// CategoryMapFile is the export of CategoryMap, written with the JSON export.
const CategoryMapFile = "category_map"

// labelFields are tried in order for a category's display name.
var labelFields = []string{"name", "title", "category_name"}

// CategoryLabel is the display name of a category, falling back to its key.
func CategoryLabel(r record.Record) string {
	for _, f := range labelFields {
		if s := record.FormatValue(r.Get(f)); s != "" {
			return s
		}
	}
	return r.Key.String()
}

// CategoryMap groups category names by the name of their parent. Top-level
// categories sit under "". A parent_id that names no category in cats is used
// as the label itself. Children keep collection order.
func CategoryMap(cats *record.Collection) map[string][]string {
	out := map[string][]string{}
	for _, r := range cats.Records() {
		parent := ""
		if pid := r.Get("parent_id"); pid != nil {
			parent = record.FormatValue(pid)
			if k, err := record.KeyOf(record.Category, record.Row{{Name: "id", Value: pid}}); err == nil {
				if p, ok := cats.Get(k); ok {
					parent = CategoryLabel(p)
				}
			}
		}
		out[parent] = append(out[parent], CategoryLabel(r))
	}
	return out
}
