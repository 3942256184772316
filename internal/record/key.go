// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/json"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// keySep joins normalized key parts. It cannot survive normalization of an
// upstream value, so parts never collide across the boundary.
const keySep = "\x1f"

var decimalRe = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][+-]?\d+)?$`)

// Key is the normalized identity of a record, unique within a snapshot and
// kind. It is comparable and usable as a map key.
type Key string

// NewKey joins already-normalized parts into a Key.
func NewKey(parts ...string) Key {
	return Key(strings.Join(parts, keySep))
}

// Parts returns the normalized key parts.
func (k Key) Parts() []string {
	return strings.Split(string(k), keySep)
}

// String renders single-part keys bare and composite keys as a tuple, e.g.
// "5" or "(1,2)".
func (k Key) String() string {
	parts := k.Parts()
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// NormalizeKeyPart trims, collapses internal whitespace and lower-cases s.
func NormalizeKeyPart(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// KeyOf computes the key for a row of the given kind. A key field that is
// missing, null or blank after normalization is an ingestion error.
func KeyOf(kind Kind, fields Row) (Key, error) {
	names := kind.KeyFields()
	if names == nil {
		return "", &IngestionError{Kind: kind, Index: -1, Reason: "unknown kind"}
	}

	parts := make([]string, 0, len(names))
	for _, name := range names {
		v, ok := fields.Get(name)
		if !ok || v == nil {
			return "", &IngestionError{Kind: kind, Index: -1, Reason: "missing key field " + name}
		}
		part := NormalizeKeyPart(keyText(v))
		if part == "" {
			return "", &IngestionError{Kind: kind, Index: -1, Reason: "blank key field " + name}
		}
		parts = append(parts, part)
	}
	return NewKey(parts...), nil
}

func keyText(v Value) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// CompareKeys orders keys part by part. Parts that both look like decimal
// numbers compare numerically, everything else lexicographically. Numerically
// equal parts with different text ("10" and "10.0") fall back to text so the
// order stays total.
func CompareKeys(a, b Key) int {
	if a == b {
		return 0
	}
	ap, bp := a.Parts(), b.Parts()
	for i := 0; i < len(ap) && i < len(bp); i++ {
		if c := comparePart(ap[i], bp[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(ap) < len(bp):
		return -1
	case len(ap) > len(bp):
		return 1
	}
	return 0
}

func comparePart(a, b string) int {
	if a == b {
		return 0
	}
	if decimalRe.MatchString(a) && decimalRe.MatchString(b) {
		ra, oka := new(big.Rat).SetString(a)
		rb, okb := new(big.Rat).SetString(b)
		if oka && okb {
			if c := ra.Cmp(rb); c != 0 {
				return c
			}
		}
	}
	return strings.Compare(a, b)
}
