package helpers

import "strings"

// CollapseWhitespace trims a string and collapses internal whitespace runs
// (including newlines from HTML text nodes) into single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
