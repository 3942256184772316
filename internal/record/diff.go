// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"bytes"
	"encoding/json"
)

// FieldChange is a single differing field between two versions of a record.
type FieldChange struct {
	Field string
	Old   Value
	New   Value
}

// FieldChanges is an ordered field diff.
type FieldChanges []FieldChange

// Fields returns the changed field names in order.
func (fc FieldChanges) Fields() []string {
	names := make([]string, len(fc))
	for i, c := range fc {
		names[i] = c.Field
	}
	return names
}

// MarshalJSON writes {"field": {"old": ..., "new": ...}, ...} in diff order.
func (fc FieldChanges) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range fc {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(c.Field)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteString(`:{"old":`)
		if err := appendValueJSON(&buf, c.Old); err != nil {
			return nil, err
		}
		buf.WriteString(`,"new":`)
		if err := appendValueJSON(&buf, c.New); err != nil {
			return nil, err
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DiffFields compares two records field by field. Fields are visited in a's
// order followed by fields only b carries, in b's order. A field missing on
// one side is treated as null. Unchanged fields are omitted.
func DiffFields(a, b Record) FieldChanges {
	var changes FieldChanges
	seen := make(map[string]struct{}, len(a.Fields))

	for _, f := range a.Fields {
		seen[f.Name] = struct{}{}
		nv, _ := b.Fields.Get(f.Name)
		if !ValuesEqual(f.Value, nv) {
			changes = append(changes, FieldChange{Field: f.Name, Old: f.Value, New: nv})
		}
	}
	for _, f := range b.Fields {
		if _, ok := seen[f.Name]; ok {
			continue
		}
		if f.Value != nil {
			changes = append(changes, FieldChange{Field: f.Name, Old: nil, New: f.Value})
		}
	}
	return changes
}

// FieldsEqual reports whether two records carry equal values for every field.
func FieldsEqual(a, b Record) bool {
	return len(DiffFields(a, b)) == 0
}
