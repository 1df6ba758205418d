package textutil

import "strings"

// SanitizeToken converts a string to a lowercase token safe to use as a file
// name stem. Letters and digits are kept, dashes and underscores are kept,
// anything else becomes a dash. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(FoldDiacritics(value))
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := slugRunPattern.ReplaceAllString(b.String(), "-")
	out = strings.Trim(out, "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
