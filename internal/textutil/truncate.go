package textutil

import "strings"

// Excerpt returns the first max runes of s, appending an ellipsis when the
// input was truncated. Whitespace runs are collapsed first so excerpts taken
// from HTML-extracted bodies stay readable.
func Excerpt(s string, max int) string {
	collapsed := CollapseWhitespace(s)
	if max <= 0 {
		return ""
	}
	runes := []rune(collapsed)
	if len(runes) <= max {
		return collapsed
	}
	return string(runes[:max]) + "..."
}

// CollapseWhitespace trims s and folds internal whitespace runs into single
// spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
