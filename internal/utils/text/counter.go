// Package text provides the pure text helpers shared by the generation
// backends, the orchestrator and the notifiers.
package text

import "strings"

// CountRunes counts Unicode characters rather than bytes.
func CountRunes(s string) int {
	return len([]rune(s))
}

// Truncate shortens s to at most max runes, ending with suffix when cut.
// The result including the suffix never exceeds max runes.
func Truncate(s string, max int, suffix string) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	sr := []rune(suffix)
	if len(sr) >= max {
		return string(r[:max])
	}
	return strings.TrimRightFunc(string(r[:max-len(sr)]), isSpace) + suffix
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}
