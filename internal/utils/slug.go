package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Anything that is not a letter, digit, underscore, hyphen or whitespace
	invalidSlugChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	// Runs of whitespace and hyphens collapse to one hyphen
	slugSeparators = regexp.MustCompile(`[-\s]+`)
)

// MaxSlugLength matches the tag slug column size.
const MaxSlugLength = 200

// Slugify turns a display name into a URL-safe slug.
// Accents are stripped ("Crème brûlée" -> "creme-brulee"); non-latin letters
// are kept as-is and lowercased, so "Завтрак" -> "завтрак".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	stripped = strings.ToLower(stripped)
	stripped = invalidSlugChars.ReplaceAllString(stripped, "")
	stripped = slugSeparators.ReplaceAllString(strings.TrimSpace(stripped), "-")
	stripped = strings.Trim(stripped, "-_")

	if len(stripped) > MaxSlugLength {
		stripped = strings.TrimRight(truncateRunes(stripped, MaxSlugLength), "-")
	}
	return stripped
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
