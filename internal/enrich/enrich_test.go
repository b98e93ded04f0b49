package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/eikon/internal/config"
	"github.com/lepinkainen/eikon/internal/deck"
	"github.com/lepinkainen/eikon/internal/errors"
)

type stubSearcher struct {
	url     string
	err     error
	queries []string
}

func (s *stubSearcher) FirstImage(_ context.Context, query string) (string, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type stubFetcher struct {
	err       error
	failures  int
	calls     int
	filenames []string
}

func (f *stubFetcher) Fetch(_ context.Context, _, filename string) (string, error) {
	f.calls++
	if f.err != nil && f.calls <= f.failures {
		return "", f.err
	}
	f.filenames = append(f.filenames, filename)
	return "/media/" + filename, nil
}

func testConfig(searchField string) *config.Config {
	return &config.Config{
		SearchField: searchField,
		SearchDelay: 0,
	}
}

func TestUpdateFillsEmptyImageField(t *testing.T) {
	searcher := &stubSearcher{url: "https://img.example.com/paris.jpg"}
	fetcher := &stubFetcher{}
	enricher := NewEnricher(testConfig(config.SearchFieldAnswer), searcher, fetcher)

	notes := []deck.Note{
		{Question: "What is the capital of France?", Answer: "Paris"},
	}

	added := enricher.Update(context.Background(), notes)

	assert.Equal(t, "paris-0.jpg", notes[0].Image)
	assert.Equal(t, []string{"Paris"}, searcher.queries)
	assert.Equal(t, []string{"paris-0.jpg"}, fetcher.filenames)

	require.Len(t, added, 1)
	assert.Equal(t, "What is the capital of France?", added[0].Question)
	assert.Equal(t, "Paris", added[0].Answer)
	assert.Equal(t, "answer", added[0].SearchField)
	assert.Equal(t, "Paris", added[0].SearchText)
	assert.Equal(t, "https://img.example.com/paris.jpg", added[0].ImageURL)
	assert.Equal(t, "paris-0.jpg", added[0].Filename)
	assert.Contains(t, added[0].SearchURL, "q=Paris")
}

func TestUpdateLeavesIllustratedNotesAlone(t *testing.T) {
	searcher := &stubSearcher{url: "https://img.example.com/x.jpg"}
	enricher := NewEnricher(testConfig(config.SearchFieldAnswer), searcher, &stubFetcher{})

	notes := []deck.Note{
		{Question: "q", Answer: "a", Image: "existing.jpg"},
	}

	added := enricher.Update(context.Background(), notes)

	assert.Equal(t, "existing.jpg", notes[0].Image)
	assert.Empty(t, searcher.queries)
	assert.Empty(t, added)
}

func TestUpdateTreatsMissingMarkersAsEmpty(t *testing.T) {
	testCases := []string{"nan", "NaN", "None", "NULL", "n/a", "<NA>"}

	for _, marker := range testCases {
		t.Run(marker, func(t *testing.T) {
			searcher := &stubSearcher{url: "https://img.example.com/x.jpg"}
			enricher := NewEnricher(testConfig(config.SearchFieldAnswer), searcher, &stubFetcher{})

			notes := []deck.Note{{Question: "q", Answer: "dog", Image: marker}}
			enricher.Update(context.Background(), notes)

			assert.Equal(t, []string{"dog"}, searcher.queries)
			assert.Equal(t, "dog-0.jpg", notes[0].Image)
		})
	}
}

func TestUpdateSearchFieldQuestion(t *testing.T) {
	searcher := &stubSearcher{url: "https://img.example.com/x.jpg"}
	enricher := NewEnricher(testConfig(config.SearchFieldQuestion), searcher, &stubFetcher{})

	notes := []deck.Note{
		{Question: "red panda", Answer: "ailurus fulgens"},
	}

	added := enricher.Update(context.Background(), notes)

	assert.Equal(t, []string{"red panda"}, searcher.queries)
	require.Len(t, added, 1)
	assert.Equal(t, "question", added[0].SearchField)
	assert.Equal(t, "red panda", added[0].SearchText)
}

func TestUpdateAnswerBulletListUsesFirstItem(t *testing.T) {
	testCases := []struct {
		name     string
		answer   string
		expected string
	}{
		{name: "plain answer", answer: "Paris", expected: "Paris"},
		{name: "bullet list", answer: "koira ▪ hund ▪ dog", expected: "koira"},
		{name: "leading empty items", answer: "▪ ▪ kissa", expected: "kissa"},
		{name: "only bullets fall back to full text", answer: "▪▪", expected: "▪▪"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			searcher := &stubSearcher{url: "https://img.example.com/x.jpg"}
			enricher := NewEnricher(testConfig(config.SearchFieldAnswer), searcher, &stubFetcher{})

			notes := []deck.Note{{Question: "q", Answer: tc.answer}}
			enricher.Update(context.Background(), notes)

			assert.Equal(t, []string{tc.expected}, searcher.queries)
		})
	}
}

func TestUpdateSkipsEmptySearchText(t *testing.T) {
	searcher := &stubSearcher{url: "https://img.example.com/x.jpg"}
	enricher := NewEnricher(testConfig(config.SearchFieldAnswer), searcher, &stubFetcher{})

	notes := []deck.Note{
		{Question: "q1", Answer: ""},
		{Question: "q2", Answer: "nan"},
		{Question: "q3", Answer: "dog"},
	}

	added := enricher.Update(context.Background(), notes)

	// Only the note with usable answer text triggers a search.
	assert.Equal(t, []string{"dog"}, searcher.queries)
	require.Len(t, added, 1)
	assert.Empty(t, notes[0].Image)
	assert.Empty(t, notes[1].Image)
	assert.Equal(t, "dog-0.jpg", notes[2].Image)
}

func TestUpdateSearchErrorContinuesRun(t *testing.T) {
	searcher := &stubSearcher{err: errors.NewNetworkError("provider unavailable")}
	enricher := NewEnricher(testConfig(config.SearchFieldAnswer), searcher, &stubFetcher{})

	notes := []deck.Note{
		{Question: "q1", Answer: "cat"},
		{Question: "q2", Answer: "dog"},
	}

	added := enricher.Update(context.Background(), notes)

	// Both notes are attempted despite every search failing.
	assert.Equal(t, []string{"cat", "dog"}, searcher.queries)
	assert.Empty(t, added)
	assert.Empty(t, notes[0].Image)
	assert.Empty(t, notes[1].Image)
}

func TestUpdateNoResultLeavesImageBlank(t *testing.T) {
	searcher := &stubSearcher{url: ""}
	fetcher := &stubFetcher{}
	enricher := NewEnricher(testConfig(config.SearchFieldAnswer), searcher, fetcher)

	notes := []deck.Note{{Question: "q", Answer: "obscure"}}
	added := enricher.Update(context.Background(), notes)

	assert.Empty(t, notes[0].Image)
	assert.Empty(t, added)
	assert.Zero(t, fetcher.calls)
}

func TestUpdateFetchFailureSkipsIndex(t *testing.T) {
	searcher := &stubSearcher{url: "https://img.example.com/x.jpg"}
	fetcher := &stubFetcher{err: errors.NewNetworkError("download failed"), failures: 1}
	enricher := NewEnricher(testConfig(config.SearchFieldAnswer), searcher, fetcher)

	notes := []deck.Note{
		{Question: "q1", Answer: "cat"},
		{Question: "q2", Answer: "dog"},
	}

	added := enricher.Update(context.Background(), notes)

	// The failed fetch does not consume a filename index.
	assert.Empty(t, notes[0].Image)
	assert.Equal(t, "dog-0.jpg", notes[1].Image)
	require.Len(t, added, 1)
	assert.Equal(t, "dog", added[0].SearchText)
}

func TestUpdateFilenameIndexIncrements(t *testing.T) {
	searcher := &stubSearcher{url: "https://img.example.com/x.jpg"}
	enricher := NewEnricher(testConfig(config.SearchFieldAnswer), searcher, &stubFetcher{})

	notes := []deck.Note{
		{Question: "q1", Answer: "cat"},
		{Question: "q2", Answer: "cat"},
		{Question: "q3", Answer: "cat"},
	}

	enricher.Update(context.Background(), notes)

	assert.Equal(t, "cat-0.jpg", notes[0].Image)
	assert.Equal(t, "cat-1.jpg", notes[1].Image)
	assert.Equal(t, "cat-2.jpg", notes[2].Image)
}

func TestUpdatePreservesOrderAndCount(t *testing.T) {
	searcher := &stubSearcher{url: "https://img.example.com/x.jpg"}
	enricher := NewEnricher(testConfig(config.SearchFieldAnswer), searcher, &stubFetcher{})

	notes := []deck.Note{
		{Question: "q1", Answer: "a", Image: "keep.jpg"},
		{Question: "q2", Answer: ""},
		{Question: "q3", Answer: "b"},
	}

	enricher.Update(context.Background(), notes)

	require.Len(t, notes, 3)
	assert.Equal(t, "q1", notes[0].Question)
	assert.Equal(t, "q2", notes[1].Question)
	assert.Equal(t, "q3", notes[2].Question)
	assert.Equal(t, "keep.jpg", notes[0].Image)
}
