// Package textutil holds small string helpers shared by the log call sites.
package textutil

import "unicode/utf8"

// Truncate shortens s to at most maxLen bytes plus an ellipsis, cutting on a
// rune boundary.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 0 {
		maxLen = 0
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
