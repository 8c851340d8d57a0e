package params

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Normalize turns a hexagram name into a lookup key: all whitespace
// (including the ideographic space) is removed and the full-width semicolon,
// comma, and colon are narrowed to ASCII.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			continue
		}
		switch r {
		case '；', '，', '：':
			if narrow := width.LookupRune(r).Narrow(); narrow != 0 {
				r = narrow
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
