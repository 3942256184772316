// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import "errors"

var (
	// ErrDuplicateTimestamp is returned when a snapshot with the same stamp
	// already exists.
	ErrDuplicateTimestamp = errors.New("duplicate snapshot timestamp")

	// ErrNotFound is returned when a snapshot or one of its units is missing.
	ErrNotFound = errors.New("snapshot not found")

	// ErrCorruptSnapshot is returned when a unit fails its checksum or cannot be
	// decoded.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrSuperseded is returned when another writer published a later stamp
	// while a snapshot was being written. The snapshot stays in place but is
	// no longer the latest, so no delta should be built against it.
	ErrSuperseded = errors.New("snapshot superseded by a concurrent writer")
)
