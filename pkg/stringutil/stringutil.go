package stringutil

import "strings"

// SplitLines splits s on "\n". Empty lines are kept, so "a\n\nb" has three
// lines and "" has one.
func SplitLines(s string) []string {
	return strings.Split(s, "\n")
}

// SplitList splits a comma separated list, trimming entries and dropping
// empty ones. An empty or blank string yields no entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Truncate shortens s to maxLen bytes, ending with "..." when there is room for it.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
