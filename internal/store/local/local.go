// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/snapshot"
)

// tmpPrefix marks containers that are still being written. List never
// returns them.
const tmpPrefix = ".tmp-"

// Store keeps snapshots as directories beneath Root, one per run.
type Store struct {
	Root    string
	Decoder snapshot.RawDecoder

	mu sync.Mutex
}

var _ snapshot.Store = (*Store)(nil)

// Write implements snapshot.Store.
func (st *Store) Write(ctx context.Context, s *snapshot.Snapshot) (snapshot.Handle, error) {
	unlock, err := st.lock(ctx)
	if err != nil {
		return snapshot.Handle{}, err
	}
	defer unlock()

	return st.write(ctx, s)
}

// WriteNext implements snapshot.Store. The root lock is held from listing
// through the rename, so writers in other processes cannot slip a stamp in
// between.
func (st *Store) WriteNext(ctx context.Context, s *snapshot.Snapshot, clock snapshot.Clock) (snapshot.Handle, *snapshot.Snapshot, error) {
	unlock, err := st.lock(ctx)
	if err != nil {
		return snapshot.Handle{}, nil, err
	}
	defer unlock()

	handles, err := st.List(ctx)
	if err != nil {
		return snapshot.Handle{}, nil, err
	}

	var floor snapshot.Handle
	if latest, ok := snapshot.Latest(handles); ok {
		floor = latest
	}
	stamped := s.WithStamp(snapshot.After(clock, floor.Stamp))

	h, err := st.write(ctx, stamped)
	if err != nil {
		return snapshot.Handle{}, nil, err
	}
	return h, stamped, nil
}

// lock takes st.mu and then the inter-process root lock.
func (st *Store) lock(ctx context.Context) (func(), error) {
	st.mu.Lock()
	rl, err := lockRoot(ctx, st.Root)
	if err != nil {
		st.mu.Unlock()
		return nil, err
	}
	return func() {
		rl.unlock()
		st.mu.Unlock()
	}, nil
}

// write publishes s by building the container under a temp name and renaming
// it into place. Callers hold the lock.
func (st *Store) write(ctx context.Context, s *snapshot.Snapshot) (snapshot.Handle, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Handle{}, err
	}

	name := snapshot.FormatStamp(s.Stamp)
	final := filepath.Join(st.Root, name)

	handles, err := st.List(ctx)
	if err != nil {
		return snapshot.Handle{}, err
	}
	if _, ok := snapshot.Find(handles, s.Stamp); ok {
		return snapshot.Handle{}, fmt.Errorf("%w: %s", snapshot.ErrDuplicateTimestamp, name)
	}
	if _, err := os.Stat(final); err == nil {
		return snapshot.Handle{}, fmt.Errorf("%w: %s", snapshot.ErrDuplicateTimestamp, name)
	}

	files, err := snapshot.Marshal(s)
	if err != nil {
		return snapshot.Handle{}, err
	}

	tmp := filepath.Join(st.Root, tmpPrefix+uuid.NewString())
	if err := os.MkdirAll(filepath.Join(tmp, snapshot.RawDir), 0o755); err != nil { //nolint:mnd
		return snapshot.Handle{}, fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	// Anything left under tmp after a failure is removed; after a successful
	// rename tmp no longer exists and this is a no-op.
	defer os.RemoveAll(tmp)

	for _, f := range files {
		p := filepath.Join(tmp, snapshot.RawDir, f.Name)
		if err := os.WriteFile(p, f.Data, 0o644); err != nil { //nolint:mnd
			return snapshot.Handle{}, fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
	}

	if err := os.Rename(tmp, final); err != nil {
		if errors.Is(err, fs.ErrExist) || errors.Is(err, syscall.ENOTEMPTY) {
			return snapshot.Handle{}, fmt.Errorf("%w: %s", snapshot.ErrDuplicateTimestamp, name)
		}
		return snapshot.Handle{}, fmt.Errorf("failed to publish %s: %w", name, err)
	}
	log.Debugf("wrote snapshot %s to %s", name, st.Root)

	return snapshot.Handle{Name: name, Stamp: s.Stamp, RawDir: snapshot.RawDir}, nil
}

// List implements snapshot.Store. Containers are ordered by their parsed
// stamp; temp, unparseable and incomplete containers are skipped.
func (st *Store) List(ctx context.Context) ([]snapshot.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(st.Root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", st.Root, err)
	}

	var handles []snapshot.Handle
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		stamp, legacy, err := snapshot.ParseStamp(e.Name())
		if err != nil {
			log.Tracef("skipping %s: %v", e.Name(), err)
			continue
		}

		rawDir, ok := st.findRawDir(e.Name())
		if !ok {
			log.Debugf("skipping %s: no raw directory", e.Name())
			continue
		}

		// New-style containers are complete only once their manifest exists.
		// Legacy ones need at least the raw unit.
		unit := snapshot.ManifestFile
		if legacy {
			unit = snapshot.RawFile
			if st.exists(e.Name(), rawDir, snapshot.ManifestFile) {
				legacy = false
				unit = snapshot.ManifestFile
			}
		}
		if !st.exists(e.Name(), rawDir, unit) {
			log.Debugf("skipping %s: incomplete", e.Name())
			continue
		}

		handles = append(handles, snapshot.Handle{
			Name:   e.Name(),
			Stamp:  stamp,
			RawDir: rawDir,
			Legacy: legacy,
		})
	}

	snapshot.SortHandles(handles)
	return handles, nil
}

// Previous implements snapshot.Store.
func (st *Store) Previous(ctx context.Context, h snapshot.Handle) (snapshot.Handle, bool, error) {
	handles, err := st.List(ctx)
	if err != nil {
		return snapshot.Handle{}, false, err
	}
	return snapshot.PreviousOf(handles, h)
}

// Read implements snapshot.Store.
func (st *Store) Read(ctx context.Context, h snapshot.Handle) (*snapshot.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rawDir := h.RawDir
	if rawDir == "" {
		var ok bool
		if rawDir, ok = st.findRawDir(h.Name); !ok {
			return nil, fmt.Errorf("%w: %s", snapshot.ErrNotFound, h.Name)
		}
	}

	read := func(name string) ([]byte, error) {
		data, err := os.ReadFile(filepath.Join(st.Root, h.Name, rawDir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s/%s", snapshot.ErrNotFound, h.Name, rawDir, name)
		}
		return data, err
	}

	return snapshot.Unmarshal(h, read, st.Decoder)
}

// Sink implements snapshot.Store.
func (st *Store) Sink(h snapshot.Handle) snapshot.Sink {
	return &DirSink{Dir: filepath.Join(st.Root, h.Name)}
}

func (st *Store) String() string {
	return "local:" + st.Root
}

// findRawDir returns the raw sub-directory of a container as spelled on disk.
// An exact "raw" wins over other casings.
func (st *Store) findRawDir(container string) (string, bool) {
	entries, err := os.ReadDir(filepath.Join(st.Root, container))
	if err != nil {
		return "", false
	}
	found := ""
	for _, e := range entries {
		if !e.IsDir() || !snapshot.IsRawDir(e.Name()) {
			continue
		}
		if e.Name() == snapshot.RawDir {
			return e.Name(), true
		}
		if found == "" {
			found = e.Name()
		}
	}
	return found, found != ""
}

func (st *Store) exists(parts ...string) bool {
	info, err := os.Stat(filepath.Join(append([]string{st.Root}, parts...)...))
	return err == nil && !info.IsDir()
}
