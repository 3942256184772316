// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package run drives one catalog cycle: fetch, persist a new snapshot, diff
// it against the one before and hand the result to the report writer.
package run
