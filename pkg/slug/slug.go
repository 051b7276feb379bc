package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given title.
//
// Examples:
//   - "The Phantom Tollbooth" → "the-phantom-tollbooth"
//   - "Where the Wild Things Are!" → "where-the-wild-things-are"
func Generate(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
