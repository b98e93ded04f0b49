// Package enrich walks a deck's notes and fills empty image fields from
// image search results.
package enrich

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lepinkainen/eikon/internal/config"
	"github.com/lepinkainen/eikon/internal/deck"
	"github.com/lepinkainen/eikon/internal/fetch"
	"github.com/lepinkainen/eikon/internal/ratelimit"
	"github.com/lepinkainen/eikon/internal/search"
)

// answerBullet separates list items inside answer fields.
const answerBullet = "▪"

// Searcher resolves free text to one candidate image URL. An empty URL
// with a nil error means the provider had no results.
type Searcher interface {
	FirstImage(ctx context.Context, query string) (string, error)
}

// Fetcher downloads an image URL into the media store under the given
// filename.
type Fetcher interface {
	Fetch(ctx context.Context, imageURL, filename string) (string, error)
}

// Provenance records one added image for the run report.
type Provenance struct {
	Question    string
	Answer      string
	SearchField string
	SearchText  string
	SearchURL   string
	ImageURL    string
	Filename    string
}

// Enricher fills empty image fields on a deck's notes. Search and fetch
// failures degrade to "no image for this note"; a pass over a deck never
// fails as a whole.
type Enricher struct {
	cfg      *config.Config
	searcher Searcher
	fetcher  Fetcher
	limiter  *ratelimit.Limiter
}

// NewEnricher creates an enricher using the given search and fetch
// collaborators.
func NewEnricher(cfg *config.Config, searcher Searcher, fetcher Fetcher) *Enricher {
	return &Enricher{
		cfg:      cfg,
		searcher: searcher,
		fetcher:  fetcher,
		limiter:  ratelimit.NewEvery("image search", cfg.SearchDelay),
	}
}

// Update mutates the notes in place, setting the image field of each
// eligible note to the filename of a freshly downloaded image, and
// returns a provenance entry per added image. Searches are paced by the
// configured delay, the first one running immediately. A cancelled
// context ends the pass early.
func (e *Enricher) Update(ctx context.Context, notes []deck.Note) []Provenance {
	slog.Info("Processing notes for image updates", "count", len(notes))

	var added []Provenance
	imageCount := 0

	for i := range notes {
		note := &notes[i]
		slog.Info("Processing note", "index", i+1, "total", len(notes))

		if current := strings.TrimSpace(normalizeMissing(note.Image)); current != "" {
			slog.Info("Note already has an image", "index", i+1, "image", current)
			continue
		}

		fieldName, searchText := e.searchText(note)
		if searchText == "" {
			slog.Warn("Empty search field for note", "index", i+1, "field", fieldName)
			continue
		}

		if err := e.limiter.Wait(ctx); err != nil {
			slog.Warn("Search pacing interrupted, stopping updates", "error", err)
			break
		}

		imageURL, err := e.searcher.FirstImage(ctx, searchText)
		if err != nil {
			slog.Error("Image search failed", "index", i+1, "query", searchText, "error", err)
			continue
		}
		if imageURL == "" {
			slog.Warn("No image found for note", "index", i+1, "query", searchText)
			continue
		}

		filename := fetch.Filename(searchText, imageCount)
		if _, err := e.fetcher.Fetch(ctx, imageURL, filename); err != nil {
			slog.Warn("Failed to download image for note", "index", i+1, "url", imageURL, "error", err)
			continue
		}

		// Relative filename so the output package can reference it.
		note.Image = filename
		imageCount++

		added = append(added, Provenance{
			Question:    note.Question,
			Answer:      note.Answer,
			SearchField: fieldName,
			SearchText:  searchText,
			SearchURL:   search.SearchURL(searchText),
			ImageURL:    imageURL,
			Filename:    filename,
		})
		slog.Info("Added image to note", "index", i+1, "filename", filename)
	}

	slog.Info("Finished image updates", "added", imageCount, "total", len(notes))
	return added
}

// searchText picks the configured field's text for a note. Answers that
// are bullet-separated lists search with their first non-empty item;
// questions are used verbatim.
func (e *Enricher) searchText(note *deck.Note) (fieldName, text string) {
	if e.cfg.SearchField == config.SearchFieldQuestion {
		return config.SearchFieldQuestion, strings.TrimSpace(normalizeMissing(note.Question))
	}

	text = strings.TrimSpace(normalizeMissing(note.Answer))
	if text == "" {
		return config.SearchFieldAnswer, ""
	}

	for _, part := range strings.Split(text, answerBullet) {
		if part = strings.TrimSpace(part); part != "" {
			return config.SearchFieldAnswer, part
		}
	}

	return config.SearchFieldAnswer, text
}

// Markers that mean "no value" in tabular exports.
var missingMarkers = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"n/a":  {},
	"na":   {},
	"<na>": {},
}

// normalizeMissing maps missing-value markers to the empty string.
func normalizeMissing(value string) string {
	if _, ok := missingMarkers[strings.ToLower(strings.TrimSpace(value))]; ok {
		return ""
	}
	return value
}
