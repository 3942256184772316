// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package dictionary maintains the translation dictionaries: CSV files that
// pair the English title of every product and category seen so far with a
// translation column. catctl only ever appends new entries with the
// translation left blank, so translations filled in by hand survive every
// later merge.
package dictionary
