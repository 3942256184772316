// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package local

import "context"

// rootLock is a no-op where flock(2) is unavailable. Writers in one process
// are still serialized by Store.mu.
type rootLock struct{}

func lockRoot(ctx context.Context, _ string) (*rootLock, error) {
	return &rootLock{}, ctx.Err()
}

func (*rootLock) unlock() {}
