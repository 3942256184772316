// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolve takes handles in ascending stamp order plus specs and returns the
// handle each spec names. A spec can be -
//
//	~N      - N back from the latest (~0 is the latest).
//	-N, 0   - same as ~N.
//	N       - the Nth snapshot, 1-based, oldest first.
//	prefix  - the first snapshot whose name starts with prefix.
//
// With no specs the latest is returned.
func Resolve(handles []Handle, specs ...string) ([]Handle, error) {
	if len(handles) == 0 {
		return nil, ErrNotFound
	}

	if len(specs) == 0 {
		specs = []string{"~0"}
	}

	result := make([]Handle, 0, len(specs))
	for _, spec := range specs {
		h, err := resolveSpec(spec, handles)
		if err != nil {
			return nil, err
		}
		result = append(result, h)
	}

	return result, nil
}

func resolveSpec(spec string, handles []Handle) (Handle, error) {
	spec = strings.TrimSpace(spec)
	switch {
	case strings.HasPrefix(spec, "~"):
		return resolveRelativeSpec(spec[1:], handles)

	case isNumeric(spec):
		return resolveNumericSpec(spec, handles)

	default:
		return resolvePrefixSpec(spec, handles)
	}
}

// resolveRelativeSpec handles ~N specs.
func resolveRelativeSpec(n string, handles []Handle) (Handle, error) {
	if n == "" {
		n = "0"
	}
	back, err := strconv.Atoi(n)
	if err != nil || back < 0 {
		return Handle{}, fmt.Errorf("invalid relative spec: ~%s", n)
	}
	return fromLatest(back, handles)
}

// resolveNumericSpec handles ordinal or relative index specs.
func resolveNumericSpec(spec string, handles []Handle) (Handle, error) {
	i, _ := strconv.Atoi(spec)

	if i <= 0 {
		// <= 0 means it's a relative index back from the latest.
		return fromLatest(-i, handles)
	}

	// Stamps are digits too, so an ordinal past the end may be a stamp prefix.
	if i > len(handles) {
		if h, err := resolvePrefixSpec(spec, handles); err == nil {
			return h, nil
		}
		return Handle{}, fmt.Errorf("index %d out of range for %d snapshots", i, len(handles))
	}
	return handles[i-1], nil
}

// resolvePrefixSpec handles stamp prefix specs.
func resolvePrefixSpec(spec string, handles []Handle) (Handle, error) {
	for _, h := range handles {
		if strings.HasPrefix(h.Name, spec) {
			return h, nil
		}
	}
	return Handle{}, fmt.Errorf("%w: no snapshot matching %s", ErrNotFound, spec)
}

func fromLatest(n int, handles []Handle) (Handle, error) {
	if n > len(handles)-1 {
		return Handle{}, fmt.Errorf("index %d out of range for %d snapshots", n, len(handles))
	}
	return handles[len(handles)-1-n], nil
}

// isNumeric checks if a string is an integer value.
func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
