// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// SortDataset stably sorts rows by a comma separated list of output keys. A
// leading - sorts descending and a leading ! compares case-sensitively.
// Numbers compare by exact value.
func SortDataset(resultSet []map[string]any, spec string) {
	if strings.TrimSpace(spec) == "" {
		return
	}
	fields := strings.Split(spec, ",")

	sort.SliceStable(resultSet, func(one, two int) bool {
		for _, field := range fields {
			field = strings.TrimSpace(field)

			ascending := true
			if strings.HasPrefix(field, "-") {
				field = strings.TrimPrefix(field, "-")
				ascending = false
			}

			caseSensitive := false
			if strings.HasPrefix(field, "!") {
				field = strings.TrimPrefix(field, "!")
				caseSensitive = true
			}

			oneValue := resultSet[one][field]
			twoValue := resultSet[two][field]

			if oneNum, ok := toRat(oneValue); ok {
				if twoNum, ok := toRat(twoValue); ok {
					if c := oneNum.Cmp(twoNum); c != 0 {
						return (c < 0) == ascending
					}
					continue
				}
			}

			// Fall back to string comparison which also handles bools.
			oneStr := InterfaceToString(oneValue)
			twoStr := InterfaceToString(twoValue)
			if !caseSensitive {
				oneStr = strings.ToLower(oneStr)
				twoStr = strings.ToLower(twoStr)
			}

			if oneStr != twoStr {
				return (oneStr < twoStr) == ascending
			}
		}
		return false
	})
}

func toRat(v any) (*big.Rat, bool) {
	switch n := v.(type) {
	case json.Number:
		return new(big.Rat).SetString(n.String())
	case float64:
		return new(big.Rat).SetString(strconv.FormatFloat(n, 'f', -1, 64))
	case int:
		return big.NewRat(int64(n), 1), true
	case int64:
		return big.NewRat(n, 1), true
	default:
		return nil, false
	}
}
