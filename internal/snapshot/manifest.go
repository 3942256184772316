// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/catctl/catctl/internal/record"
)

const (
	// RawDir is the sub-container holding the snapshot units.
	RawDir = "raw"
	// ManifestFile is published last; a container without one is incomplete.
	ManifestFile = "manifest.json"
	// RawFile holds the combined raw form as fetched.
	RawFile = "raw_data.json"
)

// UnitName returns the unit file name for a kind.
func UnitName(kind record.Kind) string {
	return kind.Plural() + ".json"
}

// Manifest describes the units of one snapshot.
type Manifest struct {
	RunID string         `json:"run_id"`
	Stamp time.Time      `json:"stamp"`
	Units []ManifestUnit `json:"units"`
}

// ManifestUnit is one entry of a Manifest. Kind is empty for the raw unit.
type ManifestUnit struct {
	Name     string      `json:"name"`
	Kind     record.Kind `json:"kind,omitempty"`
	Records  int         `json:"records"`
	Checksum string      `json:"checksum"`
}

// Checksum returns the hex BLAKE2b-256 digest of data.
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Unit returns the manifest entry with the given name.
func (m *Manifest) Unit(name string) (ManifestUnit, bool) {
	for _, u := range m.Units {
		if u.Name == name {
			return u, true
		}
	}
	return ManifestUnit{}, false
}

// Verify checks data against the manifest entry for name.
func (m *Manifest) Verify(name string, data []byte) error {
	u, ok := m.Unit(name)
	if !ok {
		return fmt.Errorf("%w: %s not in manifest", ErrCorruptSnapshot, name)
	}
	if got := Checksum(data); got != u.Checksum {
		return fmt.Errorf("%w: %s checksum %s, want %s", ErrCorruptSnapshot, name, got, u.Checksum)
	}
	return nil
}

func parseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", ErrCorruptSnapshot, err)
	}
	return &m, nil
}
