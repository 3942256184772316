// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/catctl/catctl/internal/log"
)

// lockFile guards stamp allocation and publishing across processes sharing a
// root. It is created on first use and never removed.
const lockFile = ".lock"

// lockPoll is how often a blocked writer retries the lock.
var lockPoll = 25 * time.Millisecond

// rootLock is an exclusive flock(2) on <root>/.lock.
type rootLock struct {
	f *os.File
}

// lockRoot blocks until it holds the root lock or ctx is done.
func lockRoot(ctx context.Context, root string) (*rootLock, error) {
	p := filepath.Join(root, lockFile)
	f, err := os.OpenFile(p, os.O_CREATE|os.O_RDWR, 0o644) //nolint:mnd
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p, err)
	}

	for waited := false; ; waited = true {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &rootLock{f: f}, nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			f.Close()
			return nil, fmt.Errorf("failed to lock %s: %w", p, err)
		}
		if !waited {
			log.Debugf("waiting for %s", p)
		}
		select {
		case <-ctx.Done():
			f.Close()
			return nil, ctx.Err()
		case <-time.After(lockPoll):
		}
	}
}

// unlock releases the lock. Closing the descriptor drops it as well, so the
// explicit LOCK_UN only matters for error reporting.
func (l *rootLock) unlock() {
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		log.WithError(err).Warn("failed to unlock store root")
	}
	l.f.Close()
}
