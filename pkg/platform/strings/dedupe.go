// Package strings provides string slice helpers for request normalization.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each element, then drops empty strings and repeats.
// The first occurrence wins, so the caller's order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{" Name ", "Valid Till", "Name", "", "  "})
//	// Returns: []string{"Name", "Valid Till"}
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
