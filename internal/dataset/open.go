package dataset

import (
	"fmt"
	"strings"
)

// Config selects and configures a dataset source.
type Config struct {
	Driver   string
	Path     string
	Query    string
	IDColumn string
	Hidden   []string
	Comma    rune
}

// Open initializes the configured source. An empty driver is inferred from
// the file extension.
func Open(cfg Config) (Source, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = inferDriver(cfg.Path)
	}

	switch driver {
	case "csv":
		return OpenCSV(cfg.Path, CSVOptions{IDColumn: cfg.IDColumn, Hidden: cfg.Hidden, Comma: cfg.Comma}), nil
	case "sqlite", "sqlite3":
		return OpenSQLite(cfg.Path, SQLiteOptions{Query: cfg.Query, IDColumn: cfg.IDColumn, Hidden: cfg.Hidden})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func inferDriver(path string) string {
	p := strings.ToLower(path)
	switch {
	case strings.HasSuffix(p, ".db"), strings.HasSuffix(p, ".sqlite"), strings.HasSuffix(p, ".sqlite3"):
		return "sqlite"
	default:
		return "csv"
	}
}
