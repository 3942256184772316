// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters selects rows for output using --filter expressions.
//
// Each expression is key, operator and target. Expressions are comma
// separated unless CATCTL_FILTER_DELIM says otherwise, and a row must match
// all of them.
//
// Operators, each negatable with a leading !:
//
//   - = : equal (numbers compare by exact decimal value, so price=10 matches 10.0)
//   - ~ : equal ignoring case
//   - ^ : prefix
//   - < : less than
//   - > : greater than
//   - @ : substring, or membership for arrays and objects
//   - / : regular expression
//
// A bare key keeps rows where the field is present and not null. Rows where
// the field is missing or null never match.
//
// Keys match an attr's output key first and otherwise name a field path, so
// nested JSON held in a field can be filtered with brand.name=Acme.
package filters
