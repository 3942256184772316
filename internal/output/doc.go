// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output turns command rows (snapshot listings, run summaries, diff
// lines and catalog records) into a text table, JSON or YAML. It applies the
// --filter and --sort flags first, and prints the schema of a record kind for
// "catctl show --schema".
package output
