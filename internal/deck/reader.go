package deck

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lepinkainen/eikon/internal/errors"
)

// Reader parses a deck source into its notes.
type Reader interface {
	Read(path string) ([]Note, error)
}

// ReaderFor picks the reader matching the file's extension.
// Unsupported extensions are a FormatError.
func ReaderFor(path string, fields FieldNames) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return &CSVReader{Fields: fields}, nil
	case ".apkg":
		return &APKGReader{}, nil
	default:
		return nil, errors.NewFormatError(fmt.Sprintf("unsupported input format %q, expected .csv or .apkg", filepath.Ext(path)))
	}
}
