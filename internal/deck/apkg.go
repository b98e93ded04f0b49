package deck

import (
	"archive/zip"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lepinkainen/eikon/internal/errors"
	_ "modernc.org/sqlite"
)

// FieldSeparator joins note fields inside the collection database.
const FieldSeparator = "\x1f"

// CollectionFile is the note store embedded in a deck package.
const CollectionFile = "collection.anki2"

// APKGReader reads a packaged Anki deck. The archive is extracted to a
// temporary directory which is removed again before Read returns.
type APKGReader struct{}

// Read unpacks the archive and loads every note from the embedded
// collection database. Fields map positionally: field 0 is the question,
// field 1 the answer and field 2, when present, the image. A single-field
// note uses that field for both question and answer. A package without a
// collection database is a NotFoundError; one with zero notes yields an
// empty slice.
func (r *APKGReader) Read(path string) ([]Note, error) {
	slog.Info("Reading APKG deck", "path", path)

	tempDir, err := os.MkdirTemp("", "eikon-apkg-")
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	collectionPath, err := extractCollection(path, tempDir)
	if err != nil {
		return nil, err
	}

	notes, err := readCollectionNotes(collectionPath)
	if err != nil {
		return nil, err
	}

	slog.Info("Read APKG deck", "path", path, "notes", len(notes))
	return notes, nil
}

// extractCollection copies the collection database out of the archive
// and returns its extracted path.
func extractCollection(apkgPath, targetDir string) (string, error) {
	reader, err := zip.OpenReader(apkgPath)
	if err != nil {
		return "", fmt.Errorf("failed to open APKG archive: %w", err)
	}
	defer func() { _ = reader.Close() }()

	for _, file := range reader.File {
		if file.Name != CollectionFile {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open %s in archive: %w", file.Name, err)
		}
		defer func() { _ = rc.Close() }()

		targetPath := filepath.Join(targetDir, CollectionFile)
		out, err := os.Create(targetPath)
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", targetPath, err)
		}
		defer func() { _ = out.Close() }()

		if _, err := io.Copy(out, rc); err != nil {
			return "", fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}

		return targetPath, nil
	}

	return "", errors.NewNotFoundError(CollectionFile + " not found in APKG file")
}

func readCollectionNotes(dbPath string) ([]Note, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection database: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query("SELECT flds, tags FROM notes")
	if err != nil {
		return nil, errors.NewFormatError(fmt.Sprintf("failed to query notes: %v", err))
	}
	defer func() { _ = rows.Close() }()

	var notes []Note
	for rows.Next() {
		var flds, tags string
		if err := rows.Scan(&flds, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		notes = append(notes, noteFromFields(strings.Split(flds, FieldSeparator), tags))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read note rows: %w", err)
	}

	return notes, nil
}

// noteFromFields applies the positional mapping for common note models.
func noteFromFields(fields []string, tags string) Note {
	note := Note{Tags: tags}

	if len(fields) >= 2 {
		note.Question = fields[0]
		note.Answer = fields[1]
		if len(fields) > 2 {
			note.Image = fields[2]
		}
		return note
	}

	// A single-field note searches and renders with the same text on
	// both sides.
	note.Question = fields[0]
	note.Answer = fields[0]

	return note
}
