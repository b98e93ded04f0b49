// Package csvutil provides a small generic pipeline for header-mapped
// CSV files.
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ProcessorOptions configures CSV processing behavior.
type ProcessorOptions struct {
	// SkipMalformed controls whether rows the parser rejects are
	// skipped or abort the run.
	SkipMalformed bool
}

// ProcessCSV reads a CSV file and parses each data record into type T.
// bind receives the header row once and returns the record parser, so
// column positions are resolved before any data is read. Errors from
// bind are returned as-is.
func ProcessCSV[T any](filename string, bind func(header []string) (func(record []string) (T, error), error), opts ProcessorOptions) ([]T, error) {
	csvFile, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = csvFile.Close() }()

	reader := csv.NewReader(csvFile)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	parse, err := bind(header)
	if err != nil {
		return nil, err
	}

	var items []T

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if opts.SkipMalformed {
				slog.Warn("Skipping malformed CSV record", "error", err)
				continue
			}
			return nil, fmt.Errorf("malformed record: %w", err)
		}

		item, err := parse(record)
		if err != nil {
			if opts.SkipMalformed {
				slog.Warn("Skipping invalid record", "error", err)
				continue
			}
			return nil, fmt.Errorf("invalid record: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
