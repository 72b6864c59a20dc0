// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package i18n resolves translation keys against per-locale YAML catalogs.

Catalogs live in one directory, one file per locale (en_US.yaml, fr_CA.yaml).
Nested maps are flattened into dotted keys:

	default:
	  groups:
	    name:
	      manager: Journal manager

resolves "default.groups.name.manager". A key missing from a locale resolves to
"##key##" so untranslated strings stay visible.
*/
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Translator holds the loaded catalogs. It is safe for concurrent use.
type Translator struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string
}

// New builds a translator from in-memory catalogs (locale -> key -> text).
func New(catalogs map[string]map[string]string) *Translator {
	copied := make(map[string]map[string]string, len(catalogs))
	for locale, entries := range catalogs {
		inner := make(map[string]string, len(entries))
		for key, text := range entries {
			inner[key] = text
		}
		copied[locale] = inner
	}
	return &Translator{catalogs: copied}
}

// Load reads every *.yaml and *.yml file in dir as a catalog named after the file.
func Load(dir string) (*Translator, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read catalog dir %s: %w", dir, err)
	}

	translator := &Translator{catalogs: make(map[string]map[string]string)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", entry.Name(), err)
		}

		locale := strings.TrimSuffix(entry.Name(), ext)
		if err := translator.AddCatalog(locale, data); err != nil {
			return nil, err
		}
	}

	return translator, nil
}

// AddCatalog parses YAML data and merges it into the catalog for locale.
func (t *Translator) AddCatalog(locale string, data []byte) error {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("i18n: parse catalog %s: %w", locale, err)
	}

	flat := make(map[string]string)
	if err := flatten("", tree, flat); err != nil {
		return fmt.Errorf("i18n: catalog %s: %w", locale, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.catalogs[locale] == nil {
		t.catalogs[locale] = make(map[string]string, len(flat))
	}
	for key, text := range flat {
		t.catalogs[locale][key] = text
	}
	return nil
}

// Translate resolves key for locale, or returns "##key##".
func (t *Translator) Translate(key, locale string) string {
	if text, ok := t.Lookup(key, locale); ok {
		return text
	}
	return "##" + key + "##"
}

// Lookup resolves key for locale and reports whether it was found.
func (t *Translator) Lookup(key, locale string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	text, ok := t.catalogs[locale][key]
	return text, ok
}

// HasLocale reports whether a catalog was loaded for locale.
func (t *Translator) HasLocale(locale string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.catalogs[locale]
	return ok
}

// Locales returns the loaded locales in sorted order.
func (t *Translator) Locales() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	locales := make([]string, 0, len(t.catalogs))
	for locale := range t.catalogs {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// flatten writes every leaf of node under its dotted key. Only string keys can
// form a dotted path, so a mapping with any other key type is rejected.
func flatten(prefix string, node map[string]any, out map[string]string) error {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}

		switch typed := value.(type) {
		case map[string]any:
			if err := flatten(full, typed, out); err != nil {
				return err
			}
		case map[any]any:
			return fmt.Errorf("key %q: nested keys must be strings", full)
		case nil:
			out[full] = ""
		default:
			out[full] = fmt.Sprint(typed)
		}
	}
	return nil
}
