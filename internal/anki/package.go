// Package anki assembles Anki deck packages from updated notes.
package anki

import (
	"archive/zip"
	"crypto/sha1"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lepinkainen/eikon/internal/config"
	"github.com/lepinkainen/eikon/internal/deck"
)

// Writer builds output deck packages.
type Writer struct {
	cfg *config.Config
}

// NewWriter creates a writer that packages decks into cfg.OutputDir and
// attaches every image found in cfg.MediaDir().
func NewWriter(cfg *config.Config) *Writer {
	return &Writer{cfg: cfg}
}

// WriteDeck assembles <output_dir>/<deckName>.apkg: a fresh collection
// database holding one note and one card per input note, plus every
// .jpg in the media store attached as package media. Returns the output
// path.
func (w *Writer) WriteDeck(notes []deck.Note, deckName string) (string, error) {
	slog.Info("Creating Anki deck", "name", deckName, "notes", len(notes))

	tempDir, err := os.MkdirTemp("", "eikon-build-")
	if err != nil {
		return "", fmt.Errorf("failed to create build directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	collectionPath := filepath.Join(tempDir, deck.CollectionFile)
	if err := w.buildCollection(collectionPath, notes, deckName); err != nil {
		return "", err
	}

	mediaFiles, err := filepath.Glob(filepath.Join(w.cfg.MediaDir(), "*.jpg"))
	if err != nil {
		return "", fmt.Errorf("failed to list media files: %w", err)
	}

	if err := os.MkdirAll(w.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(w.cfg.OutputDir, deckName+".apkg")
	if err := writeArchive(outputPath, collectionPath, mediaFiles); err != nil {
		return "", err
	}

	slog.Info("Created Anki deck", "path", outputPath, "media", len(mediaFiles))
	return outputPath, nil
}

// buildCollection creates the collection database with the deck, the
// note model bound to the configured field names, and all notes.
func (w *Writer) buildCollection(path string, notes []deck.Note, deckName string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to create collection database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(collectionSchema); err != nil {
		return fmt.Errorf("failed to create collection schema: %w", err)
	}

	now := time.Now()
	fields := deck.FieldNames{
		Question: w.cfg.QuestionField,
		Answer:   w.cfg.AnswerField,
		Image:    w.cfg.ImageField,
	}

	if err := insertCol(db, fields, deckName, now); err != nil {
		return err
	}

	return insertNotes(db, notes, now)
}

func insertCol(db *sql.DB, fields deck.FieldNames, deckName string, now time.Time) error {
	docs := map[string]any{
		"conf":   confJSON(),
		"models": modelsJSON(fields, now),
		"decks":  decksJSON(deckName, now),
		"dconf":  dconfJSON(),
	}

	encoded := make(map[string]string, len(docs))
	for name, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode %s document: %w", name, err)
		}
		encoded[name] = string(data)
	}

	_, err := db.Exec(
		"INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		1, now.Unix(), now.UnixMilli(), now.UnixMilli(), 11, 0, 0, 0,
		encoded["conf"], encoded["models"], encoded["decks"], encoded["dconf"], "{}",
	)
	if err != nil {
		return fmt.Errorf("failed to insert collection row: %w", err)
	}

	return nil
}

// insertNotes writes one note and one card per input note. The question,
// answer and image values are joined into the field blob; other note
// data is not carried into the output package.
func insertNotes(db *sql.DB, notes []deck.Note, now time.Time) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	noteStmt, err := tx.Prepare(
		"INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare note statement: %w", err)
	}
	defer func() { _ = noteStmt.Close() }()

	cardStmt, err := tx.Prepare(
		"INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare card statement: %w", err)
	}
	defer func() { _ = cardStmt.Close() }()

	baseID := now.UnixMilli()
	for i, note := range notes {
		noteID := baseID + int64(i)
		flds := strings.Join([]string{note.Question, note.Answer, note.Image}, deck.FieldSeparator)

		if _, err := noteStmt.Exec(
			noteID, noteGUID(flds), ModelID, now.Unix(), -1, "",
			flds, note.Question, fieldChecksum(note.Question), 0, "",
		); err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}

		if _, err := cardStmt.Exec(
			noteID, noteID, DeckID, 0, now.Unix(), -1,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, "",
		); err != nil {
			return fmt.Errorf("failed to insert card: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit notes: %w", err)
	}

	return nil
}

// noteGUID derives a stable identifier from the joined field values, so
// re-importing the same notes updates rather than duplicates them.
func noteGUID(flds string) string {
	sum := sha1.Sum([]byte(flds))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:10]
}

// fieldChecksum is the integer value of the first 8 hex digits of the
// sort field's SHA1, the checksum Anki keeps for duplicate detection.
func fieldChecksum(sortField string) int64 {
	sum := sha1.Sum([]byte(sortField))
	value, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return value
}

// writeArchive assembles the package: the collection database, one
// numbered entry per media file and the manifest mapping numbers back to
// filenames.
func writeArchive(outputPath, collectionPath string, mediaFiles []string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	zw := zip.NewWriter(out)

	if err := addFileEntry(zw, deck.CollectionFile, collectionPath); err != nil {
		return err
	}

	manifest := make(map[string]string, len(mediaFiles))
	for i, mediaPath := range mediaFiles {
		name := strconv.Itoa(i)
		manifest[name] = filepath.Base(mediaPath)

		if err := addFileEntry(zw, name, mediaPath); err != nil {
			return err
		}
	}

	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to encode media manifest: %w", err)
	}

	entry, err := zw.Create("media")
	if err != nil {
		return fmt.Errorf("failed to create media manifest entry: %w", err)
	}
	if _, err := entry.Write(manifestJSON); err != nil {
		return fmt.Errorf("failed to write media manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	return out.Close()
}

func addFileEntry(zw *zip.Writer, name, sourcePath string) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", sourcePath, err)
	}
	defer func() { _ = source.Close() }()

	entry, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", name, err)
	}

	if _, err := io.Copy(entry, source); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", name, err)
	}

	return nil
}
