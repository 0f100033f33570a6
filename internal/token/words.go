// Package token provides concrete tokenizers for the chunker.
package token

import "strings"

// Words tokenizes on Unicode whitespace: each whitespace-separated
// field is one token. Deterministic and offline, which makes it the
// default for CLI use and tests. Slicing rejoins fields with single
// spaces, so original whitespace runs are not preserved.
type Words struct{}

// Count returns the number of whitespace-separated fields in text.
func (Words) Count(text string) int {
	return len(strings.Fields(text))
}

// Slice returns the fields in [start, end) joined by single spaces.
// Out-of-range offsets are clamped.
func (Words) Slice(text string, start, end int) string {
	fields := strings.Fields(text)
	if start < 0 {
		start = 0
	}
	if end > len(fields) {
		end = len(fields)
	}
	if start >= end {
		return ""
	}
	return strings.Join(fields[start:end], " ")
}
