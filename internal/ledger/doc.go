// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package ledger keeps a sqlite history of runs: which snapshot each produced,
// which one it was compared against, and how many records changed.
package ledger
