package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// PageBreak separates the text of consecutive pages in extracted text.
const PageBreak = "\f"

// minSectionLength is the number of characters a fragment must exceed to be
// considered a product section.
const minSectionLength = 50

// sectionBoundary matches two or more blank lines, a page break, or a line of
// three or more hyphens.
var sectionBoundary = regexp.MustCompile(`(?m)\n\s*\n\s*\n|\f|^[ \t]*-{3,}[ \t]*$`)

// SplitSections partitions text into trimmed candidate sections, in source
// order, dropping fragments of minSectionLength characters or fewer.
func SplitSections(text string) []string {
	fragments := sectionBoundary.Split(text, -1)
	sections := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		fragment = strings.TrimSpace(fragment)
		if utf8.RuneCountInString(fragment) > minSectionLength {
			sections = append(sections, fragment)
		}
	}
	return sections
}
