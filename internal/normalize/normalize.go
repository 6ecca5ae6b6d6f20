// Package normalize canonicalizes free-text job descriptions before they are
// sent to the analysis service.
package normalize

import (
	"regexp"
	"strings"
)

const nbsp = "\u00a0"

var (
	// Horizontal whitespace (including a stray CR) sitting right before a line break.
	trailingSpace = regexp.MustCompile(`[\t\v\f\r \p{Zs}]+\n`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
)

// Text returns the canonical form of s. The steps are applied in a fixed order
// and the result is stable: Text(Text(s)) == Text(s).
func Text(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, nbsp, " ")
	s = trailingSpace.ReplaceAllString(s, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// IsBlank reports whether s has no content once surrounding whitespace is removed.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
