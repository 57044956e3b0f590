package analyzer

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9 ]`)
)

// Normalize canonicalizes text for comparison: lowercase, whitespace runs
// collapsed to a single space, everything outside [a-z0-9 ] stripped.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = nonAlnumRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Tokenize splits normalized text on whitespace.
func Tokenize(normalized string) []string {
	return strings.Fields(normalized)
}
