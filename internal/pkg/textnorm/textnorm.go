package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Title normalizes a user-supplied title: NFC form, a single line, no
// surrounding whitespace
func Title(s string) string {
	return strings.TrimSpace(SingleLine(s))
}

// Description normalizes a user-supplied description: NFC form, a single
// line. Inner spacing is kept.
func Description(s string) string {
	return SingleLine(s)
}

// SingleLine applies NFC normalization and replaces every line break and
// other control character with a space, so the value fits in one record of
// the flat snapshot file.
func SingleLine(s string) string {
	s = norm.NFC.String(s)
	if !strings.ContainsFunc(s, unicode.IsControl) {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
