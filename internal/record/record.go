// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Field is a single named value.
type Field struct {
	Name  string
	Value Value
}

// Row is an ordered mapping of field name to value, as delivered by the
// fetch collaborator and as stored in a record.
type Row []Field

// Get returns the value for name and whether the field is present.
func (r Row) Get(name string) (Value, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns the field names in order.
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// Set replaces the value of an existing field or appends a new one.
func (r Row) Set(name string, v Value) Row {
	for i := range r {
		if r[i].Name == name {
			r[i].Value = v
			return r
		}
	}
	return append(r, Field{Name: name, Value: v})
}

// Map returns the row as an unordered map.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Name] = f.Value
	}
	return m
}

// MarshalJSON writes the row as a JSON object with fields in row order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if err := appendValueJSON(&buf, f.Value); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RowFromJSON builds a row from a JSON object, keeping document order. Keys
// named in skip are left out.
func RowFromJSON(obj gjson.Result, skip ...string) (Row, error) {
	if !obj.IsObject() {
		return nil, fmt.Errorf("expected object, got %s", obj.Type)
	}
	var row Row
	obj.ForEach(func(k, v gjson.Result) bool {
		for _, s := range skip {
			if k.Str == s {
				return true
			}
		}
		row = append(row, Field{Name: validString(k.Str), Value: ValueFromJSON(v)})
		return true
	})
	return row, nil
}

// NewRow builds a row from name/value pairs, normalizing each value.
func NewRow(pairs ...any) (Row, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("odd number of name/value arguments")
	}
	row := make(Row, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("field name at %d is %T", i, pairs[i])
		}
		v, err := NormalizeValue(pairs[i+1])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		row = append(row, Field{Name: name, Value: v})
	}
	return row, nil
}

// Record is the unit of comparison.
type Record struct {
	Kind   Kind
	Key    Key
	Fields Row
}

// New builds a record of the given kind, computing its key.
func New(kind Kind, fields Row) (Record, error) {
	key, err := KeyOf(kind, fields)
	if err != nil {
		return Record{}, err
	}
	return Record{Kind: kind, Key: key, Fields: fields}, nil
}

// Get returns the value of a field; missing fields read as null.
func (r Record) Get(name string) Value {
	v, _ := r.Fields.Get(name)
	return v
}

// MarshalJSON writes the record's fields as an ordered JSON object.
func (r Record) MarshalJSON() ([]byte, error) {
	return r.Fields.MarshalJSON()
}
