// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import "fmt"

// IngestionError reports a malformed input row: a missing key field or a key
// duplicated within one snapshot's collection. It is fatal for the run and is
// raised before anything is written.
type IngestionError struct {
	Kind   Kind
	Index  int
	Key    Key
	Reason string
}

func (e *IngestionError) Error() string {
	msg := fmt.Sprintf("ingestion: %s", e.Kind)
	if e.Index >= 0 {
		msg += fmt.Sprintf(" row %d", e.Index)
	}
	if e.Key != "" {
		msg += fmt.Sprintf(" key %s", e.Key)
	}
	return msg + ": " + e.Reason
}
