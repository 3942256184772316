// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package snapshot defines immutable, timestamped catalog snapshots, the Store
// interface that persists them, and the on-storage encoding shared by every
// store implementation.
//
// A snapshot lives in one container per run, named by its stamp:
//
//	<stamp>/raw/categories.json
//	<stamp>/raw/products.json
//	<stamp>/raw/hierarchy_edges.json
//	<stamp>/raw/raw_data.json
//	<stamp>/raw/manifest.json
//
// The manifest is written last and carries a checksum per unit. Containers
// written by the older tooling use a "YYYY-mm-dd_HH-MM-SS" name and only hold
// Raw/raw_data.json; those are decoded through a RawDecoder.
package snapshot
