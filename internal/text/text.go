// Package text prepares raw sentences and catalog titles for word matching.
package text

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrMalformed is returned for input that is not valid UTF-8.
var ErrMalformed = errors.New("malformed sentence")

var lower = cases.Lower(language.Und)

// Sanitize lower-cases s, folds backticks and typographic apostrophes into
// "'", drops every other punctuation or symbol rune, and collapses runs of
// whitespace into single spaces.
func Sanitize(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", ErrMalformed
	}

	s = lower.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\'' || r == '`' || r == '‘' || r == '’':
			return '\''
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			return -1
		}
		return r
	}, s)

	return strings.Join(strings.Fields(s), " "), nil
}

// Words splits a sanitized sentence on whitespace.
func Words(s string) []string {
	return strings.Fields(s)
}
