// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/catctl/catctl/internal/attrs"
	"github.com/catctl/catctl/internal/driller"
	"github.com/catctl/catctl/internal/log"
)

// DelimEnvVar overrides the filter delimiter for values containing commas.
const DelimEnvVar = "CATCTL_FILTER_DELIM"

// filterRegex splits a filter expression into key, operator (optionally
// negated) and target. "title" (key only), "title=Milk", "price>10".
var filterRegex = regexp.MustCompile(`^([^!?=^~<>@/]*)(!?[=^~<>@/])?(.*)$`)

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string `yaml:"key" json:"Key"`
	Negate  bool   `yaml:"negate" json:"Negate"`
	Operand string `yaml:"operand" json:"Operand"`
	Value   string `yaml:"value" json:"Value"`
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Malformed specs are logged and skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	delim := ","
	if d, ok := os.LookupEnv(DelimEnvVar); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		filterSpec = strings.TrimSpace(filterSpec)
		if filterSpec == "" {
			continue
		}

		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil {
			log.Errorf("invalid filter: %s", filterSpec)
			continue
		}

		key := strings.TrimSpace(parts[1])
		operand := parts[2]
		if key == "" {
			log.Errorf("invalid filter: empty key in %s", filterSpec)
			continue
		}

		negate := strings.HasPrefix(operand, "!")
		operand = strings.TrimPrefix(operand, "!")

		filters = append(filters, Filter{
			Key:     key,
			Negate:  negate,
			Operand: operand,
			Value:   parts[3],
		})
	}

	return filters
}

// FilterDataset keeps the candidates matching every filter in spec and
// projects each onto attrs. Transforms are left to the output phase.
func FilterDataset(candidates gjson.Result, attrs attrs.AttrList, spec string) []map[string]any {
	//nolint:prealloc
	var filtered []map[string]any

	filters := BuildFilters(spec)

	for _, candidate := range candidates.Array() {
		if !applyFilters(candidate, attrs, filters) {
			continue
		}

		result := make(map[string]any, len(attrs))
		for _, attr := range attrs {
			if attr.Key == "*" {
				continue
			}
			result[attr.OutputKey] = Value(driller.Driller(candidate.Raw, attr.Key))
		}
		filtered = append(filtered, result)
	}

	return filtered
}

// Value converts a JSON result to a Go value. Numbers stay json.Number so no
// precision is lost on the way to output.
func Value(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.Number:
		return json.Number(r.Raw)
	case gjson.String:
		return r.Str
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return r.Value()
	}
}

// applyFilters returns true if candidate matches all filters. A filter key
// is an attr output key or, failing that, a field path.
func applyFilters(candidate gjson.Result, attrs attrs.AttrList, filters []Filter) bool {
	for _, filter := range filters {
		key := filter.Key
		for _, attr := range attrs {
			if attr.OutputKey == filter.Key {
				key = attr.Key
				break
			}
		}

		value := driller.Driller(candidate.Raw, key)
		if !value.Exists() || value.Type == gjson.Null {
			return false
		}

		var result bool
		switch {
		case filter.Operand == "":
			result = true
		case value.Type == gjson.Number:
			result = checkNumericOperand(value.Raw, filter)
		case value.Type == gjson.String:
			result = checkStringOperand(value.Str, filter)
		case value.Type == gjson.True || value.Type == gjson.False:
			result = checkStringOperand(value.Raw, filter)
		case filter.Operand == "@":
			result = checkContainsOperand(value.Value(), filter)
		default:
			result = checkStringOperand(value.Raw, filter)
		}

		if !result {
			return false
		}
	}

	return true
}

// checkContainsOperand evaluates a membership filter (operand '@') against
// slice or map values.
func checkContainsOperand(value any, filter Filter) bool {
	switch val := value.(type) {
	case []any:
		for _, item := range val {
			if fmt.Sprint(item) == filter.Value {
				return !filter.Negate
			}
		}
		return filter.Negate
	case map[string]any:
		_, found := val[filter.Value]
		return found != filter.Negate
	default:
		log.Errorf("unsupported type for contains filtering: %T", value)
		return false
	}
}

// checkNumericOperand compares decimal text exactly. Supported operands are
// =, > and <; other operands fall back to string comparison.
func checkNumericOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=", ">", "<":
	default:
		return checkStringOperand(value, filter)
	}

	v, ok := new(big.Rat).SetString(value)
	if !ok {
		return checkStringOperand(value, filter)
	}
	tgt, ok := new(big.Rat).SetString(strings.TrimSpace(filter.Value))
	if !ok {
		log.Errorf("invalid numeric value: %s", filter.Value)
		return false
	}

	c := v.Cmp(tgt)
	switch filter.Operand {
	case "=":
		return (c == 0) == !filter.Negate
	case ">":
		return (c > 0) == !filter.Negate
	default:
		return (c < 0) == !filter.Negate
	}
}

// checkStringOperand evaluates a string comparison filter.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return value == filter.Value == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Value) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Value) == !filter.Negate
	case ">":
		return value > filter.Value == !filter.Negate
	case "<":
		return value < filter.Value == !filter.Negate
	case "@":
		return strings.Contains(value, filter.Value) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Value, value)
		if err != nil {
			log.Errorf("invalid regex: %s", filter.Value)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Errorf("unsupported filtering operand: %s", filter.Operand)
		return false
	}
}
