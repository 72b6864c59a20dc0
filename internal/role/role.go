// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package role enumerates the fixed role identifiers a user group can carry.
//
// Identifiers are bit-pattern constants inherited from the journal platform's
// data files, which write them in hex (roleId="0x10").
package role

import (
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a role.
type ID int64

const (
	SiteAdmin           ID = 0x00000001
	Manager             ID = 0x00000010
	SubEditor           ID = 0x00000011
	Reviewer            ID = 0x00001000
	Assistant           ID = 0x00001001
	Author              ID = 0x00010000
	Reader              ID = 0x00100000
	SubscriptionManager ID = 0x00200000
)

var paths = map[ID]string{
	SiteAdmin:           "admin",
	Manager:             "manager",
	SubEditor:           "subEditor",
	Reviewer:            "reviewer",
	Assistant:           "assistant",
	Author:              "author",
	Reader:              "reader",
	SubscriptionManager: "subscriptionManager",
}

var ordered = []ID{SiteAdmin, Manager, SubEditor, Reviewer, Assistant, Author, Reader, SubscriptionManager}

// All returns every known role in ascending id order.
func All() []ID {
	out := make([]ID, len(ordered))
	copy(out, ordered)
	return out
}

// Valid reports whether id is a known role.
func (id ID) Valid() bool {
	_, ok := paths[id]
	return ok
}

// Path returns the URL path segment for the role, or "" if unknown.
func (id ID) Path() string {
	return paths[id]
}

// String renders the role as its path, falling back to the hex id.
func (id ID) String() string {
	if path, ok := paths[id]; ok {
		return path
	}
	return fmt.Sprintf("role(%#x)", int64(id))
}

// FromPath resolves a path back to its role.
func FromPath(path string) (ID, bool) {
	for id, candidate := range paths {
		if candidate == path {
			return id, true
		}
	}
	return 0, false
}

// Parse reads a role id written in hex ("0x10") or decimal ("16") and
// rejects ids that are not known roles.
func Parse(raw string) (ID, error) {
	raw = strings.TrimSpace(raw)
	value, err := strconv.ParseInt(raw, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("role: invalid id %q: %w", raw, err)
	}

	id := ID(value)
	if !id.Valid() {
		return 0, fmt.Errorf("role: unknown id %q", raw)
	}
	return id, nil
}

// ParseHex reads a role id the way definition files write it: always base 16,
// with or without the 0x prefix ("10" and "0x10" are both [Manager]).
func ParseHex(raw string) (ID, error) {
	raw = strings.TrimSpace(raw)
	digits := strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	value, err := strconv.ParseInt(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("role: invalid id %q: %w", raw, err)
	}

	id := ID(value)
	if !id.Valid() {
		return 0, fmt.Errorf("role: unknown id %q", raw)
	}
	return id, nil
}
