// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package setting

import "sort"

// Map holds every setting of one owner: name -> locale -> value.
// Non-localized settings live under locale "".
type Map map[string]map[string]Value

// Get returns the value for name in locale.
func (m Map) Get(name, locale string) (Value, bool) {
	value, ok := m[name][locale]
	return value, ok
}

// Set stores value for name in locale, allocating as needed.
func (m Map) Set(name, locale string, value Value) {
	if m[name] == nil {
		m[name] = make(map[string]Value)
	}
	m[name][locale] = value
}

// Localized returns a copy of the locale -> value map for name.
func (m Map) Localized(name string) map[string]Value {
	out := make(map[string]Value, len(m[name]))
	for locale, value := range m[name] {
		out[locale] = value
	}
	return out
}

// Names returns the setting names in sorted order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortedLocales returns the keys of values in sorted order so that writes are deterministic.
func sortedLocales(values map[string]Value) []string {
	locales := make([]string, 0, len(values))
	for locale := range values {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}
