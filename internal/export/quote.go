package export

import (
	"cmp"
	"fmt"
	"regexp"
	"strings"
)

// Quote returns s in double quotes with control characters, backslashes and
// quotes escaped. Non-ASCII characters are kept as they are.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\'':
			b.WriteByte('\'')
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

var bareText = regexp.MustCompile(`^[-\w_+*=.:;/@?&#()\[\]{}<>]+$`)

// QuoteIfNeeded returns s unchanged when it consists only of word
// characters and common punctuation, and Quote(s) otherwise. The empty
// string is always quoted.
func QuoteIfNeeded(s string) string {
	if bareText.MatchString(s) {
		return s
	}
	return Quote(s)
}

// compareFold orders strings case-insensitively and breaks ties
// case-sensitively.
func compareFold(a, b string) int {
	if c := cmp.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}
