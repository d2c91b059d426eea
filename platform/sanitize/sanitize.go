// Package sanitize cleans free-text input before it is stored.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Text strips HTML markup and collapses runs of whitespace. Entities are
// decoded before a second strip so encoded tags do not survive.
func Text(s string) string {
	out := tagPattern.ReplaceAllString(s, "")
	out = tagPattern.ReplaceAllString(html.UnescapeString(out), "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(out, " "))
}

// TextPtr is Text for optional fields.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	return &out
}
