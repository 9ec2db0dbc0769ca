package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 96

// Slugify derives a URL slug from a title: lowercase ASCII letters and
// digits separated by single hyphens, with diacritics removed.
// It returns "" when nothing usable remains.
func Slugify(title string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		stripped = title
	}
	lower := cases.Lower(language.Und).String(stripped)

	var b strings.Builder
	pendingDash := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			if b.Len() >= maxSlugLen {
				break
			}
			continue
		}
		pendingDash = true
	}
	return strings.TrimRight(b.String(), "-")
}

// slugFor falls back to a prefix of id for titles without usable characters.
func slugFor(title, id string) string {
	if s := Slugify(title); s != "" {
		return s
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
