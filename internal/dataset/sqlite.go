package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultQuery selects every activity in schedule order.
const DefaultQuery = "SELECT * FROM activities ORDER BY rowid"

// SQLiteOptions controls how a result set is mapped onto a dataset.
type SQLiteOptions struct {
	Query    string
	IDColumn string
	Hidden   []string
}

type sqliteSource struct {
	db   *sql.DB
	path string
	opts SQLiteOptions
}

// OpenSQLite opens the database at path. Each Load runs opts.Query and keeps
// the rows in query order; SQL NULL is a null value.
func OpenSQLite(path string, opts SQLiteOptions) (Source, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Read-only use; one connection is plenty.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if strings.TrimSpace(opts.Query) == "" {
		opts.Query = DefaultQuery
	}
	return &sqliteSource{db: db, path: path, opts: opts}, nil
}

func (s *sqliteSource) Load(ctx context.Context) (*Dataset, error) {
	rows, err := s.db.QueryContext(ctx, s.opts.Query)
	if err != nil {
		return nil, fmt.Errorf("query dataset: %w", err)
	}
	defer rows.Close()

	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	hidden := make(map[string]bool, len(s.opts.Hidden))
	for _, h := range s.opts.Hidden {
		hidden[strings.ToLower(strings.TrimSpace(h))] = true
	}

	names := make([]string, len(cols))
	columns := make([]Column, len(cols))
	idCol := -1
	for i, ct := range cols {
		name := strings.ToLower(ct.Name())
		names[i] = name
		order := i
		if hidden[name] {
			order = -1
		}
		columns[i] = Column{Name: name, DisplayName: ct.Name(), Order: order, DataType: ct.DatabaseTypeName()}
		if s.opts.IDColumn != "" && name == strings.ToLower(s.opts.IDColumn) {
			idCol = i
		}
	}

	ds := New(columns)
	cells := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		values := make(map[string]string, len(cols))
		for i, c := range cells {
			if c.Valid {
				values[names[i]] = c.String
			}
		}
		id := ""
		if idCol >= 0 && cells[idCol].Valid {
			id = cells[idCol].String
		}
		if id == "" {
			id = uuid.NewString()
		}
		if err := ds.Append(NewRecord(id, values)); err != nil {
			return nil, fmt.Errorf("%w: %s", err, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return ds, nil
}

func (s *sqliteSource) Path() string { return s.path }

func (s *sqliteSource) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
