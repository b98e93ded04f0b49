// Package deck reads flashcard decks from their on-disk formats.
package deck

// Note is one flashcard. Question, Answer and Image are the fields the
// pipeline reads and updates. Tags and Extra carry passthrough data that
// is kept in memory but never consulted.
type Note struct {
	Question string
	Answer   string
	Image    string
	Tags     string
	Extra    map[string]string
}

// FieldNames maps the pipeline's three note fields to the column names
// used by a particular deck.
type FieldNames struct {
	Question string
	Answer   string
	Image    string
}
