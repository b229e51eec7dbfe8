// Package strings holds small helpers for list-valued inputs such as query
// parameters and CLI flags.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and blanks, trimming each element. Order of
// first occurrence is preserved.
//
//	DedupeAndTrim([]string{"  login ", "logout", "login", ""})
//	// []string{"login", "logout"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// SplitList flattens repeated and comma-separated values, so ?type=a,b&type=c
// and --type a,b --type c both yield [a b c].
func SplitList(values []string) []string {
	var parts []string
	for _, v := range values {
		parts = append(parts, strings.Split(v, ",")...)
	}
	return DedupeAndTrim(parts)
}
