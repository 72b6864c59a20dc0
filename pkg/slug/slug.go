// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug derives ASCII path identifiers from display names.
//
// A user group created without an explicit path gets one derived from its
// default-locale name ("Rédacteur en chef" becomes "redacteur-en-chef").
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	multiHyphen     = regexp.MustCompile(`-{2,}`)
)

// From converts an arbitrary Unicode string into an ASCII slug.
//
// Accents are stripped after NFD decomposition, the result is lowercased, and
// every run of other characters collapses into a single hyphen.
func From(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)

	result = strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '-'
	}, result)

	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// FromWithMax is [From] truncated to at most max bytes without a trailing hyphen.
func FromWithMax(s string, max int) string {
	result := From(s)
	if max <= 0 || len(result) <= max {
		return result
	}
	return strings.TrimRight(result[:max], "-")
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
