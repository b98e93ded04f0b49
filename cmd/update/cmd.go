// Package update drives one full image update pass over a flashcard
// deck: read the deck, find and download an image for every note whose
// image field is empty, then write the updated notes out as a new Anki
// package.
package update

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lepinkainen/eikon/internal/anki"
	"github.com/lepinkainen/eikon/internal/config"
	"github.com/lepinkainen/eikon/internal/deck"
	"github.com/lepinkainen/eikon/internal/enrich"
	"github.com/lepinkainen/eikon/internal/fetch"
	"github.com/lepinkainen/eikon/internal/search"
)

// Pipeline wires the deck reader, the search and download stages and
// the package writer together for a single run.
type Pipeline struct {
	cfg      *config.Config
	searcher enrich.Searcher
	fetcher  enrich.Fetcher
	out      io.Writer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSearcher replaces the image search client.
func WithSearcher(searcher enrich.Searcher) Option {
	return func(p *Pipeline) {
		p.searcher = searcher
	}
}

// WithFetcher replaces the image download client.
func WithFetcher(fetcher enrich.Fetcher) Option {
	return func(p *Pipeline) {
		p.fetcher = fetcher
	}
}

// WithOutput redirects the end-of-run report.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) {
		p.out = w
	}
}

// NewPipeline creates a Pipeline backed by the DuckDuckGo search client
// and the HTTP image fetcher.
func NewPipeline(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		searcher: search.NewClient(search.WithUserAgent(cfg.UserAgent)),
		fetcher:  fetch.NewFetcher(cfg),
		out:      os.Stdout,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run reads the deck at inputFile, fills empty image fields and writes
// the result as a new package named after deckName. Per-note search and
// download failures are logged and skipped; only deck-level failures
// abort the run.
func (p *Pipeline) Run(ctx context.Context, inputFile, deckName string) error {
	fields := deck.FieldNames{
		Question: p.cfg.QuestionField,
		Answer:   p.cfg.AnswerField,
		Image:    p.cfg.ImageField,
	}

	reader, err := deck.ReaderFor(inputFile, fields)
	if err != nil {
		return err
	}

	slog.Info("Reading deck", "file", inputFile)
	notes, err := reader.Read(inputFile)
	if err != nil {
		return fmt.Errorf("failed to read deck %s: %w", inputFile, err)
	}
	slog.Info("Deck loaded", "notes", len(notes))

	if err := os.MkdirAll(p.cfg.MediaDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	enricher := enrich.NewEnricher(p.cfg, p.searcher, p.fetcher)
	added := enricher.Update(ctx, notes)

	outputPath, err := anki.NewWriter(p.cfg).WriteDeck(notes, deckName)
	if err != nil {
		return fmt.Errorf("failed to write deck: %w", err)
	}

	writeReport(p.out, added, outputPath, p.cfg.MediaDir())
	return nil
}
