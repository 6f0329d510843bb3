package store

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Lllllllleong/catalogflow/internal/models"
)

// Fold lower-cases s and strips its diacritics, so that "Pokémon" and
// "POKEMON" fold to the same string.
func Fold(s string) string {
	// Transformers keep state; build them per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripMarks, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// MatchesSearch reports whether search occurs in the title, description,
// country or one of the platforms of product, ignoring case and accents. An
// empty search matches everything.
func MatchesSearch(product models.Product, search string) bool {
	needle := Fold(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	fields := append([]string{product.Title, product.Description, product.Country}, product.Platforms...)
	for _, field := range fields {
		if strings.Contains(Fold(field), needle) {
			return true
		}
	}
	return false
}

// MatchesFilter reports whether product satisfies every non-empty field of
// filter.
func MatchesFilter(product models.Product, filter models.ProductFilter) bool {
	if filter.ID != "" && product.ID != filter.ID {
		return false
	}
	if filter.Category != "" && product.Category != filter.Category {
		return false
	}
	if filter.Subcategory != "" && (product.Subcategory == nil || *product.Subcategory != filter.Subcategory) {
		return false
	}
	return MatchesSearch(product, filter.Search)
}
