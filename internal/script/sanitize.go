package script

import (
	"strings"
	"unicode"
)

// Clean normalizes text extracted from a script or source document:
// control and zero-width characters are dropped, exotic spaces become
// plain spaces, and internal whitespace runs collapse to one space.
// Applied to heading titles and segment text alike, so downstream
// filename generation and synthesis see printable text only.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\u00a0': // non-breaking space
			b.WriteRune(' ')
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
			// zero-width characters
		case '♀', '♂':
			// gender signs show up in slide decks and read terribly
		default:
			switch {
			case r == '\n' || r == '\t':
				b.WriteRune(' ')
			case unicode.IsControl(r):
			case unicode.IsPrint(r):
				b.WriteRune(r)
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
