package fetch

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	separators  = regexp.MustCompile(`[-\s]+`)
)

// maxSlugLength bounds the query-derived part of a filename.
const maxSlugLength = 50

// Filename derives a media store filename from a search query: the
// lowercased query reduced to word characters and hyphens, capped at 50
// characters, with a per-run index keeping repeated queries apart.
func Filename(query string, index int) string {
	slug := unsafeChars.ReplaceAllString(strings.ToLower(query), "")
	slug = separators.ReplaceAllString(slug, "-")

	if runes := []rune(slug); len(runes) > maxSlugLength {
		slug = string(runes[:maxSlugLength])
	}

	return fmt.Sprintf("%s-%d.jpg", slug, index)
}
