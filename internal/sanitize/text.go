// Package sanitize prepares server-supplied strings for terminal output.
package sanitize

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes.
var StrictPolicy = bluemonday.StrictPolicy()

// Text strips HTML markup and control characters so event fields cannot
// inject tags or terminal escape sequences into command output. Newlines and
// tabs survive.
func Text(input string) string {
	if input == "" {
		return ""
	}
	// bluemonday escapes entities in the text it keeps; a terminal wants them literal.
	plain := html.UnescapeString(StrictPolicy.Sanitize(input))
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, plain)
}

// Cell returns Text(input) folded onto a single line and cut to at most width
// runes, with an ellipsis marking truncation. width <= 0 disables truncation.
func Cell(input string, width int) string {
	line := strings.Join(strings.Fields(Text(input)), " ")
	if width <= 0 {
		return line
	}
	runes := []rune(line)
	if len(runes) <= width {
		return line
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
