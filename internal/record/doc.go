// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package record defines the catalog record model: the three record kinds,
// their normalized identity keys, scalar field values and the field-by-field
// comparison used by the delta engine.
//
// Only keys are normalized (trim, collapse whitespace, lower-case). Field
// values are compared literally, except numbers, which compare by exact
// decimal value. A field absent from a record is equivalent to an explicit
// null.
package record
