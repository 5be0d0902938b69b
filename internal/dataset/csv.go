package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// CSVOptions controls how a CSV file is mapped onto a dataset.
type CSVOptions struct {
	// IDColumn names the column holding record ids. When empty or missing
	// from the header, ids are generated.
	IDColumn string
	// Hidden lists columns reported with a negative order.
	Hidden []string
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// ReadCSV reads a CSV document whose first row is the header. Column order is
// the header position, record order is file order, and empty cells are null.
func ReadCSV(r io.Reader, opts CSVOptions) (*Dataset, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	// Short trailing rows are allowed; missing cells read as null.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	hidden := make(map[string]bool, len(opts.Hidden))
	for _, h := range opts.Hidden {
		hidden[strings.ToLower(strings.TrimSpace(h))] = true
	}

	// Create case-insensitive column mapping
	names := make([]string, len(header))
	columns := make([]Column, 0, len(header))
	idCol := -1
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		names[i] = name
		order := i
		if hidden[name] {
			order = -1
		}
		columns = append(columns, Column{
			Name:        name,
			DisplayName: strings.TrimSpace(col),
			Order:       order,
			DataType:    "SingleLine.Text",
		})
		if opts.IDColumn != "" && name == strings.ToLower(opts.IDColumn) {
			idCol = i
		}
	}

	ds := New(columns)
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		line++

		values := make(map[string]string, len(row))
		for i, cell := range row {
			if i >= len(names) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			values[names[i]] = cell
		}

		id := ""
		if idCol >= 0 && idCol < len(row) {
			id = strings.TrimSpace(row[idCol])
		}
		if id == "" {
			id = uuid.NewString()
		}
		if err := ds.Append(NewRecord(id, values)); err != nil {
			return nil, fmt.Errorf("line %d: %w: %s", line, err, id)
		}
	}
	return ds, nil
}

type csvSource struct {
	path string
	opts CSVOptions
}

// OpenCSV returns a source that re-reads the file at path on every Load.
func OpenCSV(path string, opts CSVOptions) Source {
	return &csvSource{path: path, opts: opts}
}

func (s *csvSource) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer file.Close()
	return ReadCSV(file, s.opts)
}

func (s *csvSource) Path() string { return s.path }

func (s *csvSource) Close() error { return nil }
