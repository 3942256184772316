// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"slices"
	"strings"
)

// SortHandles orders handles ascending by stamp, then by name so that the
// order never depends on storage listing order.
func SortHandles(handles []Handle) {
	slices.SortFunc(handles, func(a, b Handle) int {
		if c := a.Stamp.Compare(b.Stamp); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}
