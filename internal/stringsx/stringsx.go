// Package stringsx has the text helpers used to show notes in lists.
package stringsx

import (
	"strings"
	"unicode/utf8"
)

// BlankTitle stands in for a note without any visible text.
const BlankTitle = "EMPTY NOTE"

// Clip returns at most max runes of s, ending in "…" when something was cut.
// If max <= 0, an empty string is returned.
func Clip(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	if max == 1 {
		return string(r[:1])
	}
	return string(r[:max-1]) + "…"
}

// IsEmpty reports whether s is empty after trimming spaces.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Title is the one-line label of a note: its first non-blank line, clipped.
func Title(text string, max int) string {
	for _, line := range strings.Split(text, "\n") {
		if !IsEmpty(line) {
			return Clip(strings.TrimSpace(line), max)
		}
	}
	return BlankTitle
}
