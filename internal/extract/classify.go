package extract

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/Lllllllleong/catalogflow/internal/models"
)

// keywordSet reports whether any of its keywords occurs in a lower-cased text.
type keywordSet struct {
	matcher *ahocorasick.Matcher
}

func newKeywordSet(keywords ...string) keywordSet {
	return keywordSet{matcher: ahocorasick.NewStringMatcher(keywords)}
}

func (k keywordSet) in(text []byte) bool {
	return len(k.matcher.MatchThreadSafe(text)) > 0
}

// categoryRule assigns a category when its keywords occur. subcategory, when
// set, picks the subcategory; rules without one leave it untouched.
type categoryRule struct {
	keywords    keywordSet
	category    string
	subcategory func(text []byte) string
}

var (
	xboxOneKeywords    = newKeywordSet("xbox one")
	xboxSeriesKeywords = newKeywordSet("xbox series", "series x", "series s")
	appleKeywords      = newKeywordSet("ios", "iphone", "ipad", "apple")
)

// categoryRules is a decision list: the first rule whose keywords occur wins.
// Naming an Xbox console generation is enough to make a section a game; a bare
// "xbox" is not, so Xbox companion apps still classify as applications.
var categoryRules = []categoryRule{
	{
		keywords:    newKeywordSet("juego", "game", "gaming", "xbox one", "xbox series"),
		category:    models.CategoryGames,
		subcategory: func(text []byte) string {
			switch {
			case xboxOneKeywords.in(text):
				return models.SubcategoryXboxOne
			case xboxSeriesKeywords.in(text):
				return models.SubcategoryXboxSeries
			default:
				return models.SubcategoryPC
			}
		},
	},
	{
		keywords:    newKeywordSet("app", "aplicación", "software"),
		category:    models.CategoryApplications,
		subcategory: func(text []byte) string {
			if appleKeywords.in(text) {
				return models.SubcategoryApple
			}
			return models.SubcategoryAndroid
		},
	},
	{keywords: newKeywordSet("serie", "series", "tv"), category: models.CategorySeriesTV},
	{keywords: newKeywordSet("película", "movie", "film"), category: models.CategoryMovies},
	{keywords: newKeywordSet("anime"), category: models.CategoryAnimes},
	{keywords: newKeywordSet("animado", "cartoon", "animation"), category: models.CategoryAnimated},
	{keywords: newKeywordSet("telenovela", "novela"), category: models.CategorySoapOperas},
	{keywords: newKeywordSet("reality", "show"), category: models.CategoryRealityShows},
}

// Classify returns the category and subcategory for a section. The given
// values are returned unchanged, with matched set to false, when no rule
// applies; a rule without a subcategory chooser keeps the given subcategory.
func Classify(section, category, subcategory string) (string, string, bool) {
	text := []byte(strings.ToLower(section))
	for _, rule := range categoryRules {
		if !rule.keywords.in(text) {
			continue
		}
		if rule.subcategory != nil {
			return rule.category, rule.subcategory(text), true
		}
		return rule.category, subcategory, true
	}
	return category, subcategory, false
}
