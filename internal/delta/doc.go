// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package delta classifies the records of two snapshots of the same kind as
// added, removed or changed. It is pure computation over already validated
// collections and never returns an error.
package delta
