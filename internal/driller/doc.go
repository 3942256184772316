// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package driller resolves dotted attribute paths such as "price" or
// "attributes.brand.name" against a category or product record. Fields that
// upstream ships as nested JSON are stored as text, so driller re-parses them
// on the way down. The filters package uses it for --attrs columns and
// --filter terms.
package driller
