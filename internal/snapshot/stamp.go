// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// StampLayout names new containers. The fixed-width fraction keeps names
// sortable as text as well, but ordering always uses the parsed time.
const StampLayout = "20060102T150405.000000000Z"

// LegacyStampLayout is the second-resolution local-time naming used by the
// older tooling.
const LegacyStampLayout = "2006-01-02_15-04-05"

// FormatStamp renders t as a container name.
func FormatStamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}

// ParseStamp parses a container name in either layout. It reports whether
// the name uses the legacy layout.
func ParseStamp(name string) (t time.Time, legacy bool, err error) {
	if t, err = time.Parse(StampLayout, name); err == nil {
		return t, false, nil
	}
	if t, err = time.ParseInLocation(LegacyStampLayout, name, time.Local); err == nil {
		return t.UTC(), true, nil
	}
	return time.Time{}, false, fmt.Errorf("not a snapshot stamp: %s", name)
}

// IsRawDir reports whether name is the raw-data sub-container. The match is
// case-insensitive since both "raw" and "Raw" occur across runs.
func IsRawDir(name string) bool {
	return strings.EqualFold(name, RawDir)
}

// Clock hands out snapshot stamps.
type Clock interface {
	Next() time.Time
}

// MonotonicClock returns wall-clock stamps that strictly increase, even when
// the wall clock stalls or steps backwards.
type MonotonicClock struct {
	mu   sync.Mutex
	last time.Time
	Now  func() time.Time
}

// NewClock returns a MonotonicClock backed by time.Now.
func NewClock() *MonotonicClock {
	return &MonotonicClock{Now: time.Now}
}

// Next returns a stamp strictly after any previously returned one.
func (c *MonotonicClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Now().UTC().Round(0)
	if !now.After(c.last) {
		now = c.last.Add(time.Nanosecond)
	}
	c.last = now
	return now
}

// After returns a stamp from clock that is strictly later than floor. Stores
// use it so a new run always sorts after the latest persisted snapshot.
func After(clock Clock, floor time.Time) time.Time {
	t := clock.Next()
	if !t.After(floor) {
		t = floor.Add(time.Nanosecond)
	}
	return t
}
