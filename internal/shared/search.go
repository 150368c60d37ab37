package shared

import (
	"strings"

	"golang.org/x/text/cases"
)

// ContainsFold reports whether needle occurs in haystack ignoring case.
// An empty or blank needle matches everything. A Caser is stateful, so each
// call folds with its own.
func ContainsFold(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	folder := cases.Fold()
	return strings.Contains(folder.String(haystack), folder.String(needle))
}

// EqualFold reports whether a and b are equal after full Unicode case
// folding and trimming surrounding space.
func EqualFold(a, b string) bool {
	folder := cases.Fold()
	return folder.String(strings.TrimSpace(a)) == folder.String(strings.TrimSpace(b))
}
