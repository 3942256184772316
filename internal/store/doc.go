// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package store picks a snapshot.Store implementation from configuration.
// The implementations live in the local and s3 sub-packages.
package store
