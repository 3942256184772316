// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package fetch retrieves the upstream catalog document and extracts category,
// product and hierarchy-edge rows from it.
package fetch
