// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package local

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/snapshot"
)

// Option configures a Store.
type Option = func(st *Store) error

// New returns a Store rooted at root, creating the directory if needed. A
// relative root is resolved against the working directory.
func New(root string, options ...Option) (*Store, error) {
	options = append([]Option{FromRoot(root)}, options...)

	st := &Store{}
	for _, opt := range options {
		if err := opt(st); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(st.Root, 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("failed to create store root: %w", err)
	}
	log.Debugf("local store: root = %s", st.Root)

	return st, nil
}

// FromRoot sets the root directory.
func FromRoot(root string) Option {
	return func(st *Store) error {
		if root == "" {
			return fmt.Errorf("local store needs a root directory")
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("failed to resolve root %s: %w", root, err)
		}
		st.Root = abs
		return nil
	}
}

// WithDecoder sets the decoder used for legacy containers.
func WithDecoder(d snapshot.RawDecoder) Option {
	return func(st *Store) error {
		st.Decoder = d
		return nil
	}
}
