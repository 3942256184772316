// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ backs "catctl diff --raw" and the snapshot picker. It renders
// a colored diff of two raw_data.json units, dropping the top-level keys
// named by --ignore, and lets the user choose the pair interactively when
// "+" is given in place of a snapshot name.
package differ
