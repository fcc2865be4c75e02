package model

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CanonicalName normalizes a participant name: surrounding and repeated
// whitespace is collapsed, and each whitespace-separated word gets its first
// character upper-cased and the rest lower-cased.
// "  mary  ann " -> "Mary Ann", "jean-luc" -> "Jean-luc". Returns "" for
// blank input.
func CanonicalName(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)
	for i, w := range words {
		_, n := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:n]) + lower.String(w[n:])
	}
	return strings.Join(words, " ")
}

// CanonicalNames canonicalizes a list of names, dropping blanks and
// duplicates while keeping first-seen order.
func CanonicalNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		c := CanonicalName(n)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
