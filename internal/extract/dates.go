package extract

import (
	"time"
)

// FallbackReleaseDate is used whenever no usable date can be recognised.
const FallbackReleaseDate = "2024-01-01"

// dateLayouts are tried in order; day and month may be one or two digits.
var dateLayouts = []string{
	"2/1/2006",
	"1/2/2006",
	"2006/1/2",
	"2-1-2006",
	"1-2-2006",
	"2006-1-2",
}

// NormalizeDate turns a loosely formatted date token into YYYY-MM-DD. It never
// fails: a bare four-digit year becomes the first of January and anything
// unparseable becomes FallbackReleaseDate.
func NormalizeDate(token string) string {
	date, _ := normalizeDate(token)
	return date
}

// normalizeDate is NormalizeDate that also reports whether the token was
// understood or the fallback was used.
func normalizeDate(token string) (string, bool) {
	if len(token) == 4 && isDigits(token) {
		return token + "-01-01", true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return FallbackReleaseDate, false
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
