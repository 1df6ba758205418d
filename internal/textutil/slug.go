package textutil

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugStem is the length the slug stem is cut back under before the
// ordinal suffix is appended.
const MaxSlugStem = 40

var (
	slugStripPattern = regexp.MustCompile(`[^\w\s-]+`)
	slugDashPattern  = regexp.MustCompile(`[_\s]+`)
	slugRunPattern   = regexp.MustCompile(`-{2,}`)
)

// FoldDiacritics removes combining marks after canonical decomposition so
// "Café" becomes "Cafe".
func FoldDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

// SlugStem derives the unsuffixed slug for a headline. It returns "" when the
// headline has no word characters.
func SlugStem(headline string) string {
	stem := strings.ToLower(FoldDiacritics(strings.TrimSpace(headline)))
	stem = slugStripPattern.ReplaceAllString(stem, "")
	stem = slugDashPattern.ReplaceAllString(stem, "-")
	stem = slugRunPattern.ReplaceAllString(stem, "-")
	stem = strings.Trim(stem, "-")
	if len(stem) > MaxSlugStem {
		if ix := strings.LastIndex(stem[:MaxSlugStem], "-"); ix > 0 {
			stem = stem[:ix]
		} else {
			stem = stem[:MaxSlugStem]
		}
	}
	if stem != "" && stem[0] >= '0' && stem[0] <= '9' {
		stem = "sl-" + stem
	}
	return stem
}

// Slugify derives "<stem>-<index>" for a headline. Headlines with no usable
// characters produce "annotation-<index>".
func Slugify(headline string, index int) string {
	stem := SlugStem(headline)
	if stem == "" {
		stem = "annotation"
	}
	return stem + "-" + strconv.Itoa(index)
}

// NormalizeSlug lowercases and trims an editor-supplied slug.
func NormalizeSlug(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
