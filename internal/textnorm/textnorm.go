// Package textnorm folds free-form labels and values into a comparable form.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks, so "Prénom" becomes "Prenom".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lowercases s, strips diacritics, turns underscores, dashes and
// apostrophes into spaces and collapses whitespace.
func Fold(s string) string {
	s = strings.ToLower(StripDiacritics(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '_' || r == '-' || r == '\'' || r == '’' {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Tokens splits the folded form of s into alphanumeric words.
func Tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ContainsTokens reports whether the token sequence needle appears
// contiguously in haystack.
func ContainsTokens(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// MatchKeyword reports whether label carries keyword. Keywords of three
// runes or fewer must appear as whole words; longer ones may appear anywhere.
func MatchKeyword(label, keyword string) bool {
	folded := Fold(keyword)
	if folded == "" {
		return false
	}
	if len([]rune(folded)) <= 3 {
		return ContainsTokens(Tokens(label), Tokens(keyword))
	}
	return strings.Contains(Fold(label), folded)
}
