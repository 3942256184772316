// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package local implements the snapshot store on a local directory tree. A
// snapshot is assembled under a ".tmp-<uuid>" directory and renamed into
// place, so readers see either the whole container or nothing. Writers take an
// exclusive flock on "<root>/.lock", so runs in separate processes still
// publish stamps in order.
package local
