// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/catctl/catctl/internal/log"
)

// Dir resolves the base cache directory.
// Precedence:
//  1. CATCTL_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/catctl
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("CATCTL_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "catctl"), true
	}
	return "", false
}

// Enabled returns true unless CATCTL_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("CATCTL_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// Units holds copies of published snapshot units for one remote store. Units
// never change once their manifest is published, so an entry stays valid
// until it is purged or evicted. Entries live at
//
//	<base>/<store>/<container>/<raw dir>/<unit>
//
// where <store> is a digest of the store's location.
//
// A nil *Units is a disabled cache: every lookup misses and writes are
// dropped.
type Units struct {
	dir string
}

// Open returns the unit cache for a store, identified by the parts of its
// location (for S3, the bucket and prefix). It returns nil when caching is
// disabled or no base directory can be resolved.
func Open(location ...string) *Units {
	if !Enabled() {
		return nil
	}
	base, ok := Dir()
	if !ok {
		return nil
	}
	return &Units{dir: filepath.Join(base, storeKey(location))}
}

// Get returns the cached copy of container/unit, byte for byte. A hit bumps
// the entry's modification time so Purge keeps units that are still read.
func (u *Units) Get(container, unit string) ([]byte, bool) {
	if u == nil {
		return nil, false
	}
	p, err := u.path(container, unit)
	if err != nil {
		return nil, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	log.Tracef("cache hit: %s/%s", container, unit)
	return b, true
}

// Put stores data for container/unit. The entry appears atomically so a
// concurrent Get never sees a partial file.
func (u *Units) Put(container, unit string, data []byte) error {
	if u == nil {
		return nil
	}
	p, err := u.path(container, unit)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	log.Tracef("cache write: %s/%s", container, unit)
	return nil
}

// Load returns the cached unit, or calls load and caches its result on a
// miss. hit reports which happened. A failed cache write is logged and
// otherwise ignored.
func (u *Units) Load(container, unit string, load func() ([]byte, error)) (data []byte, hit bool, err error) {
	if data, ok := u.Get(container, unit); ok {
		return data, true, nil
	}
	if data, err = load(); err != nil {
		return nil, false, err
	}
	if err := u.Put(container, unit, data); err != nil {
		log.WithError(err).Warn("error writing to cache")
	}
	return data, false, nil
}

// Evict drops every cached unit of container. It is used when a cached copy
// fails its manifest checksum.
func (u *Units) Evict(container string) error {
	if u == nil {
		return nil
	}
	if err := checkPart(container); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(u.dir, container)); err != nil {
		return fmt.Errorf("failed to evict %s from cache: %w", container, err)
	}
	log.Debugf("evicted %s from cache", container)
	return nil
}

// path maps container/unit to a file below u.dir. Each path segment must be a
// plain name; anything that could climb out of the cache is refused.
func (u *Units) path(container, unit string) (string, error) {
	parts := append([]string{container}, strings.Split(unit, "/")...)
	for _, p := range parts {
		if err := checkPart(p); err != nil {
			return "", err
		}
	}
	return filepath.Join(append([]string{u.dir}, parts...)...), nil
}

var errBadName = errors.New("invalid cache entry name")

func checkPart(p string) error {
	if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
		return fmt.Errorf("%w: %q", errBadName, p)
	}
	return nil
}

// Purge removes units not read or written within the given number of hours,
// then any snapshot directories left empty. If hours <= 0 or the cache dir
// cannot be resolved, it is a no-op.
func Purge(hours int) error {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return nil
	}

	base, ok := Dir()
	if !ok {
		return nil
	}

	maxAge := time.Duration(hours) * time.Hour
	var dirs []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		// Entries can vanish under a concurrent purge.
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() {
			if path != base {
				dirs = append(dirs, path)
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr
		}
		if time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				log.Debugf("removed cache file %s", path)
			} else {
				log.WithError(err).Warnf("failed to remove cache file %s", path)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}

	// Deepest first, so a container goes once its raw directory has.
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = os.Remove(dirs[i]) // fails unless empty
	}
	return nil
}

// storeKey is the hex sha256 digest of a store location, so any bucket or
// prefix spelling maps to one safe directory name.
func storeKey(location []string) string {
	h := sha256.Sum256([]byte(strings.Join(location, "\x00")))
	return hex.EncodeToString(h[:])
}
