// internal/utils/slug.go
package utils

import (
	"strings"
	"unicode"
)

// Slugify derives a URL-safe slug from a display name: lowercase, runs of
// non-alphanumerics collapse to a single hyphen, no leading or trailing
// hyphen. Uniqueness (numeric-suffix disambiguation) is the caller's job.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true

	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}
