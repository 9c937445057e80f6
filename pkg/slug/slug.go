package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given name. Diacritics are
// stripped (Yoruba, Igbo and Hausa tone and dot marks included) before every
// run of non-alphanumeric characters is collapsed into a single hyphen.
//
// Examples:
//   - "Balerie Baton"    → "balerie-baton"
//   - "Ọjà Àdìrẹ"        → "oja-adire"
//   - `24" x 19W" Print` → "24-x-19w-print"
func Generate(name string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		stripped = name
	}

	slug := strings.ToLower(strings.TrimSpace(stripped))
	slug = slugRegexp.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
