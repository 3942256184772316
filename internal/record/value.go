// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Value is a scalar field value. It is always one of nil, string, bool or
// json.Number. Numbers keep their decimal text so nothing is lost on a
// write/read round trip.
type Value = any

// NormalizeValue converts a Go value into a Value. Native numeric types
// become json.Number; nested maps and slices are stored as compact JSON text
// so records stay flat.
func NormalizeValue(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		return validString(v), nil
	case bool, json.Number:
		return v, nil
	case float64:
		return json.Number(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case float32:
		return json.Number(strconv.FormatFloat(float64(v), 'f', -1, 32)), nil
	case int:
		return json.Number(strconv.Itoa(v)), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case int32:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case uint:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case uint32:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("unsupported value %T: %w", v, err)
		}
		return string(b), nil
	}
}

// ValueFromJSON converts a parsed JSON value. Numbers keep their literal
// text; objects and arrays become compact JSON strings.
func ValueFromJSON(res gjson.Result) Value {
	switch res.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return json.Number(res.Raw)
	case gjson.String:
		return validString(res.Str)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(res.Raw)); err != nil {
			return validString(res.Raw)
		}
		return validString(buf.String())
	}
}

// validString replaces invalid UTF-8 with U+FFFD, once per run of bad bytes.
// encoding/json would make the same substitution on write, so a value that
// skipped it here would never compare equal to itself after a round trip.
func validString(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

// ValuesEqual compares two values. Numbers compare by exact decimal value,
// so 10.0 equals 10 but 10.0 does not equal 10.000000001. Strings compare
// literally. Values of different types are never equal.
func ValuesEqual(a, b Value) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case string:
		bs, ok := b.(string)
		return ok && a == bs
	case bool:
		bb, ok := b.(bool)
		return ok && a == bb
	case json.Number:
		bn, ok := b.(json.Number)
		if !ok {
			return false
		}
		if a == bn {
			return true
		}
		ra, oka := new(big.Rat).SetString(string(a))
		rb, okb := new(big.Rat).SetString(string(bn))
		if !oka || !okb {
			return false
		}
		return ra.Cmp(rb) == 0
	default:
		return false
	}
}

// FormatValue renders a value for tabular output. Null renders empty.
func FormatValue(v Value) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func appendValueJSON(buf *bytes.Buffer, v Value) error {
	switch v := v.(type) {
	case nil:
		buf.WriteString("null")
	case json.Number:
		if !decimalRe.MatchString(string(v)) {
			return fmt.Errorf("invalid number %q", string(v))
		}
		buf.WriteString(string(v))
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}
