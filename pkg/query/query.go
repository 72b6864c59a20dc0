// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-valued inputs from URL query strings and XML attributes.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// StringSlice splits a comma-separated string into trimmed, non-empty parts.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}

// IntList parses a comma-separated list of integers such as "1,3,4".
// Entries that are not integers are returned in rejected instead of failing the list.
func IntList(val string) (ints []int, rejected []string) {
	parts := StringSlice(val)
	ints = make([]int, 0, len(parts))
	for _, part := range parts {
		i, err := strconv.Atoi(part)
		if err != nil {
			rejected = append(rejected, part)
			continue
		}
		ints = append(ints, i)
	}
	return ints, rejected
}

// Int64 parses an optional int64 value. Empty input yields (nil, nil).
func Int64(val string) (*int64, error) {
	if strings.TrimSpace(val) == "" {
		return nil, nil
	}
	i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("query: %q is not an integer", val)
	}
	return &i, nil
}
