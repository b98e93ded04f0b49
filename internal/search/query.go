package search

import (
	"html"
	"strings"
)

// CleanQuery prepares free text for the image search: HTML entities are
// decoded, anything from an embedded [sound: tag onward is dropped,
// non-breaking space variants become plain spaces and the result is
// trimmed.
func CleanQuery(query string) string {
	clean := html.UnescapeString(query)

	if idx := strings.Index(clean, "[sound:"); idx >= 0 {
		clean = clean[:idx]
	}

	clean = strings.ReplaceAll(clean, " ", " ")
	clean = strings.ReplaceAll(clean, "&nbsp;", " ")

	return strings.TrimSpace(clean)
}
