package deck

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lepinkainen/eikon/internal/csvutil"
	"github.com/lepinkainen/eikon/internal/errors"
)

// CSVReader reads a delimited-text deck whose first row names the columns.
type CSVReader struct {
	Fields FieldNames
}

// Read parses the file into notes. The configured question and answer
// columns must both be present; their absence is a FormatError. Rows the
// CSV parser rejects are skipped.
func (r *CSVReader) Read(path string) ([]Note, error) {
	slog.Info("Reading CSV deck", "path", path)

	notes, err := csvutil.ProcessCSV(path, r.bind, csvutil.ProcessorOptions{SkipMalformed: true})
	if err != nil {
		return nil, err
	}

	slog.Info("Read CSV deck", "path", path, "notes", len(notes))
	return notes, nil
}

// bind validates the header and returns the row mapper. A column named
// "tags" (any case) lands in Tags; anything else that is not one of the
// configured fields goes to Extra as passthrough data.
func (r *CSVReader) bind(header []string) (func([]string) (Note, error), error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	var missing []string
	for _, required := range []string{r.Fields.Question, r.Fields.Answer} {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewFormatError(fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	return func(record []string) (Note, error) {
		var note Note

		for i, name := range header {
			if i >= len(record) {
				break
			}
			value := record[i]

			switch {
			case name == r.Fields.Question:
				note.Question = value
			case name == r.Fields.Answer:
				note.Answer = value
			case name == r.Fields.Image:
				note.Image = value
			case strings.EqualFold(name, "tags"):
				note.Tags = value
			default:
				if note.Extra == nil {
					note.Extra = make(map[string]string)
				}
				note.Extra[name] = value
			}
		}

		return note, nil
	}, nil
}
