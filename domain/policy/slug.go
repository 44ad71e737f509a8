package policy

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\s\v\p{Z}\x{feff}-]`)
	slugSpaces     = regexp.MustCompile(`[\s\v\p{Z}\x{feff}]+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

// Slugify lower-cases s, drops everything but ASCII letters, digits, whitespace
// (Unicode spaces such as NBSP included) and hyphens, then joins words with
// single hyphens. Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// copySlug derives the slug of a duplicated document
func copySlug(slug string, at time.Time) string {
	return fmt.Sprintf("%s-copy-%d", slug, at.UnixMilli())
}
