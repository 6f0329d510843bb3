package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Lllllllleong/catalogflow/internal/models"
)

// Placeholders for fields the recognizer could not fill.
const (
	PlaceholderCountry     = "No especificado"
	PlaceholderDescription = "Descripción no disponible"
)

const (
	maxDescriptionLength = 500
	fallbackDescLength   = 100
	maxPlatforms         = 10
)

// rule pairs a pattern with the extractor applied to its first capture
// group. An extractor may reject the capture, in which case the next rule of
// the field is tried.
type rule struct {
	pattern *regexp.Regexp
	extract func(capture string) (string, bool)
}

// firstMatch tries rules in declared order and stops at the first accepted
// capture.
func firstMatch(rules []rule, section string) (string, bool) {
	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(section)
		if m == nil {
			continue
		}
		if value, ok := r.extract(m[1]); ok {
			return value, true
		}
	}
	return "", false
}

func trimmed(capture string) (string, bool) {
	return strings.TrimSpace(capture), true
}

func titleSized(capture string) (string, bool) {
	title := strings.TrimSpace(capture)
	n := utf8.RuneCountInString(title)
	return title, n > 3 && n < 100
}

func descriptionSized(capture string) (string, bool) {
	return truncate(strings.TrimSpace(capture), maxDescriptionLength), true
}

func verbatim(capture string) (string, bool) {
	return capture, true
}

var titleRules = []rule{
	{regexp.MustCompile(`(?im)(?:título|title|nombre):\s*([^\n]+)`), titleSized},
	{regexp.MustCompile(`(?im)^([A-Z][^:\n]+(?:\s+[A-Z][^\n]*)*)\s*$`), titleSized},
	{regexp.MustCompile(`(?im)(?:^|\n)([A-Z][A-Za-z0-9\s:]+(?:20\d{2}|III|IV|V|VI|VII|VIII|IX|X))`), titleSized},
}

var descriptionRules = []rule{
	{regexp.MustCompile(`(?ims)(?:descripción|description|resumen|summary):\s*([^\n]+(?:\n[^\n:]*)*)`), descriptionSized},
	{regexp.MustCompile(`(?ims)(?:overview|sinopsis):\s*([^\n]+)`), descriptionSized},
}

var countryRules = []rule{
	{regexp.MustCompile(`(?i)(?:país|country|origin|procedencia):\s*([^\n]+)`), trimmed},
	{regexp.MustCompile(`(?i)(?:desarrollado en|made in|from):\s*([^\n]+)`), trimmed},
	// Word boundaries are spelled out so accented names such as Canadá and
	// Japón terminate correctly.
	{regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(Estados Unidos|USA|United States|España|Spain|Francia|France|Alemania|Germany|Reino Unido|UK|Japón|Japan|China|Corea del Sur|South Korea|México|Mexico|Argentina|Brasil|Brazil|Italia|Italy|Canadá|Canada|Australia|Suecia|Sweden|Polonia|Poland|Holanda|Netherlands)(?:[^\p{L}\p{N}_]|$)`), trimmed},
}

var releaseDateRules = []rule{
	{regexp.MustCompile(`(?i)(?:fecha|date|año|year|lanzamiento|release):\s*(\d{1,2}[-/]\d{1,2}[-/]\d{4}|\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{4})`), verbatim},
	{regexp.MustCompile(`(?i)(?:released|launched):\s*(\d{4})`), verbatim},
	{regexp.MustCompile(`\b(20\d{2})\b`), verbatim},
}

// platformPatterns are all evaluated; every match contributes.
var platformPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:plataformas|platforms|available on):\s*([^\n]+)`),
	regexp.MustCompile(`(?i)(?:compatible con|supports):\s*([^\n]+)`),
	regexp.MustCompile(`(?i)\b(PC|PlayStation|Xbox|Nintendo|Switch|PS5|PS4|Xbox One|Xbox Series|Windows|macOS|Linux|Android|iOS|Steam|Epic Games)\b`),
}

var platformSeparator = regexp.MustCompile(`[,;&]|\s+(?:y|and)\s+`)

// RecognizeFields builds a candidate product from one section. The result
// always has every field populated: anything not recognised is filled with a
// placeholder and listed in DefaultedFields.
func RecognizeFields(section string) models.CandidateProduct {
	product := models.CandidateProduct{
		Category:    models.CategoryGames,
		Subcategory: models.SubcategoryPC,
	}

	product.Title, _ = firstMatch(titleRules, section)

	product.Description, _ = firstMatch(descriptionRules, section)
	if product.Description == "" && product.Title != "" {
		product.Description = descriptionAfterTitle(section, product.Title)
	}

	product.Country, _ = firstMatch(countryRules, section)

	if token, ok := firstMatch(releaseDateRules, section); ok {
		date, understood := normalizeDate(token)
		product.ReleaseDate = date
		if !understood {
			product.DefaultedFields = append(product.DefaultedFields, "fecha_lanzamiento")
		}
	}

	product.Platforms = recognizePlatforms(section)

	var classified bool
	product.Category, product.Subcategory, classified = Classify(section, product.Category, product.Subcategory)
	if !classified {
		product.DefaultedFields = append(product.DefaultedFields, "categoria")
	}

	if product.Country == "" {
		product.Country = PlaceholderCountry
		product.DefaultedFields = append(product.DefaultedFields, "pais")
	}
	if product.ReleaseDate == "" {
		product.ReleaseDate = FallbackReleaseDate
		product.DefaultedFields = append(product.DefaultedFields, "fecha_lanzamiento")
	}
	if product.Description == "" {
		product.Description = PlaceholderDescription
		product.DefaultedFields = append(product.DefaultedFields, "descripcion")
	}
	return product
}

// descriptionAfterTitle joins the non-blank lines that follow the line holding
// the title until the text grows past fallbackDescLength characters.
func descriptionAfterTitle(section, title string) string {
	lowerTitle := strings.ToLower(title)
	var parts []string
	titleFound := false
	for _, line := range strings.Split(section, "\n") {
		if strings.Contains(strings.ToLower(line), lowerTitle) {
			titleFound = true
			continue
		}
		line = strings.TrimSpace(line)
		if !titleFound || line == "" {
			continue
		}
		parts = append(parts, line)
		if utf8.RuneCountInString(strings.Join(parts, " ")) > fallbackDescLength {
			break
		}
	}
	return truncate(strings.Join(parts, " "), maxDescriptionLength)
}

// recognizePlatforms pools the matches of every platform pattern, splits
// listed values on separators and keeps the first maxPlatforms distinct names
// in order of appearance.
func recognizePlatforms(section string) []string {
	platforms := make([]string, 0, maxPlatforms)
	seen := make(map[string]struct{})
	for _, pattern := range platformPatterns {
		for _, m := range pattern.FindAllStringSubmatch(section, -1) {
			for _, token := range platformSeparator.Split(m[1], -1) {
				token = strings.TrimSpace(token)
				if token == "" {
					continue
				}
				if _, dup := seen[token]; dup {
					continue
				}
				seen[token] = struct{}{}
				platforms = append(platforms, token)
			}
		}
	}
	if len(platforms) > maxPlatforms {
		platforms = platforms[:maxPlatforms]
	}
	return platforms
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
