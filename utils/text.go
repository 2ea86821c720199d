package utils

import "unicode/utf8"

// Truncate returns at most limit runes of s. It never splits a rune.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// RuneLen is the length of s in characters rather than bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
