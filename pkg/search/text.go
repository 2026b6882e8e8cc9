package search

import "strings"

// collapseSpace trims s and replaces every whitespace run with a single space
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
