// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/record"
)

// schemaField is one field name seen across a set of rows.
type schemaField struct {
	Name  string
	Types map[string]bool
	Count int
}

func (f schemaField) print(total int) string {
	types := make([]string, 0, len(f.Types))
	for t := range f.Types {
		types = append(types, t)
	}
	sort.Strings(types)
	return fmt.Sprintf("%s\t%s\t%d/%d", f.Name, strings.Join(types, "|"), f.Count, total)
}

// DumpSchema writes every field seen in rows, in first-seen order, with the
// value types observed and how many rows carry it. If w is nil, os.Stdout is
// used.
func DumpSchema(kind record.Kind, rows []record.Row, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintf(w, "Fields of %s records, usable with --attrs, --filter and --sort.\n\n", kind)

	fields := schemaWalker(rows)
	if len(fields) == 0 {
		log.Debugf("no fields found for kind: %s", kind)
		return
	}

	for _, f := range fields {
		fmt.Fprintln(w, f.print(len(rows)))
	}
}

func schemaWalker(rows []record.Row) []schemaField {
	var fields []schemaField
	index := map[string]int{}

	for _, row := range rows {
		for _, f := range row {
			i, ok := index[f.Name]
			if !ok {
				i = len(fields)
				index[f.Name] = i
				fields = append(fields, schemaField{Name: f.Name, Types: map[string]bool{}})
			}
			fields[i].Count++
			fields[i].Types[valueType(f.Value)] = true
		}
	}

	return fields
}

func valueType(v record.Value) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case json.Number:
		return "number"
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
			return "json"
		}
		return "string"
	default:
		return fmt.Sprintf("%T", v)
	}
}
