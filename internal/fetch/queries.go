// Package fetch turns sentence words into catalog queries and runs them on a
// bounded, rate-limited worker pool.
package fetch

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinQueryLen is the shortest word worth a catalog query of its own.
const DefaultMinQueryLen = 3

// Queries builds the catalog queries for a sentence. Words shorter than
// minLen runes are held back and prefixed to the next long-enough word, so
// ["i", "love", "u", "rock"] yields ["i love", "u rock"]. Short words with no
// long word after them produce no query.
func Queries(words []string, minLen int) []string {
	if minLen <= 0 {
		minLen = DefaultMinQueryLen
	}

	var queries []string
	var held []string
	for _, w := range words {
		if utf8.RuneCountInString(w) < minLen {
			held = append(held, w)
			continue
		}
		if len(held) == 0 {
			queries = append(queries, w)
			continue
		}
		queries = append(queries, strings.Join(held, " ")+" "+w)
		held = held[:0]
	}
	return queries
}
