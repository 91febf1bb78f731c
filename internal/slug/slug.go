package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWordPattern   = regexp.MustCompile(`[^a-z0-9_\s-]`)
	spacePattern     = regexp.MustCompile(`\s+`)
	multiDashPattern = regexp.MustCompile(`-+`)
)

// Generate turns "Full Stack Developer" into "full-stack-developer".
// Accented letters are folded to their base letter first.
func Generate(text string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		text,
	)
	if err != nil {
		folded = text
	}

	s := strings.TrimSpace(strings.ToLower(folded))
	s = nonWordPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, "-")
	s = multiDashPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Unique appends -2, -3, ... to base until it is not in existing.
func Unique(base string, existing map[string]bool) string {
	if !existing[base] {
		return base
	}

	for counter := 2; ; counter++ {
		candidate := fmt.Sprintf("%s-%d", base, counter)
		if !existing[candidate] {
			return candidate
		}
	}
}
