// Package textmatch provides the fuzzy string primitives used for query
// correction: Levenshtein distance, normalized similarity and Soundex codes.
package textmatch

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s and composes it to NFC so that visually identical
// Hindi/Telugu input compares equal regardless of how it was typed.
//
// A cases.Caser is stateful, so one is built per call.
func Normalize(s string) string {
	return norm.NFC.String(cases.Lower(language.Und).String(s))
}

// EditDistance returns the case-insensitive Levenshtein distance between a and b,
// counted in runes. Insertions, deletions and substitutions each cost 1.
func EditDistance(a, b string) int {
	return edlib.LevenshteinDistance(Normalize(a), Normalize(b))
}

// Similarity returns 1 - distance/max(len(a), len(b)) in [0, 1].
// Two empty strings are identical and score 1.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	longest := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	if longest == 0 {
		return 1
	}
	d := edlib.LevenshteinDistance(na, nb)
	return 1 - float64(d)/float64(longest)
}

// IsFuzzyMatch reports whether query is at least threshold-similar to target.
func IsFuzzyMatch(query, target string, threshold float64) bool {
	return Similarity(query, target) >= threshold
}
