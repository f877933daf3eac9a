package slug

import (
	"regexp"
	"strings"
)

var (
	// JavaScript's \s, which is wider than RE2's.
	spaceRun    = regexp.MustCompile(`[\s\v\x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]+`)
	nonWord     = regexp.MustCompile(`[^\w-]+`)
	hyphenRun   = regexp.MustCompile(`--+`)
	edgeHyphens = regexp.MustCompile(`^-+|-+$`)
)

// Slugify converts heading markup into a lowercase identifier safe for URLs
// and id attributes.
//
// Only the first "&amp;" is spelled out as "and"; later ones lose their
// punctuation like any other non-word characters.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.Replace(s, "&amp;", "and", 1)
	s = spaceRun.ReplaceAllString(s, "-")
	s = nonWord.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return edgeHyphens.ReplaceAllString(s, "")
}
