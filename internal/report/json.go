// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"encoding/json"

	"github.com/catctl/catctl/internal/delta"
	"github.com/catctl/catctl/internal/record"
)

type jsonEncoder struct{}

// changeJSON is one entry of a *_changed.json file.
type changeJSON struct {
	Key     string              `json:"key"`
	Changes record.FieldChanges `json:"changes"`
	Record  record.Record       `json:"record"`
}

func (jsonEncoder) records(_ record.Kind, recs []record.Record) ([]byte, error) {
	if recs == nil {
		recs = []record.Record{}
	}
	return marshal(recs)
}

func (jsonEncoder) changes(_ record.Kind, changes []delta.Change) ([]byte, error) {
	out := make([]changeJSON, len(changes))
	for i, c := range changes {
		out[i] = changeJSON{Key: c.Key.String(), Changes: c.Fields, Record: c.Current}
	}
	return marshal(out)
}

// marshal indents without escaping HTML so text fields stay readable.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
