package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticsRemover = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold strips combining diacritical marks so that accented and unaccented
// spellings compare equal. The Vietnamese đ/Đ carry no combining mark and
// are mapped explicitly.
func Fold(value string) string {
	folded, _, err := transform.String(diacriticsRemover, value)
	if err != nil {
		folded = value
	}
	folded = strings.ReplaceAll(folded, "đ", "d")
	folded = strings.ReplaceAll(folded, "Đ", "D")
	return folded
}

// FoldLower folds diacritics and lowercases the result for matching.
func FoldLower(value string) string {
	return strings.ToLower(Fold(value))
}

// ContainsFold reports whether haystack contains needle ignoring case and
// diacritics.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(FoldLower(haystack), FoldLower(needle))
}
