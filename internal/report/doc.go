// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package report writes delta output beside a snapshot:
//
//	delta/json/<name>_{added,removed,changed}.json
//	delta/csv/<name>_{added,removed,changed}.csv
//	delta/csv/products_field_changes.csv
//	delta/{json,csv}/<name>.{json,csv}
//
// where name is categories, products or categories_hierarchy. The last line
// is an export of the current snapshot.
package report
