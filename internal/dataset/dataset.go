// Package dataset holds the tabular data a host hands to a control: column
// descriptors, records keyed by id, and the order the host wants them shown in.
//
// Everything here is owned by the host. Controls only read it during an update.
package dataset

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNoHeader is returned when a CSV input has no header row.
	ErrNoHeader = errors.New("dataset: missing header row")
	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("dataset: unknown driver")
	// ErrDuplicateID is returned when two records share an id.
	ErrDuplicateID = errors.New("dataset: duplicate record id")
)

// Column describes one column of the dataset. A negative Order marks a
// supplementary column that is not displayed.
type Column struct {
	Name        string
	DisplayName string
	Order       int
	DataType    string
}

// Record is a single row. Values are stored as formatted strings keyed by the
// lower-cased column name; a missing key is a null value.
type Record struct {
	id     string
	values map[string]string
}

// NewRecord builds a record from a column -> formatted value map. Column names
// are matched case-insensitively.
func NewRecord(id string, values map[string]string) *Record {
	r := &Record{id: id, values: make(map[string]string, len(values))}
	for k, v := range values {
		r.values[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return r
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// FormattedValue returns the formatted value of the named column. The bool is
// false when the value is null.
func (r *Record) FormattedValue(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.values[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

// Dataset is a host-supplied page of records together with its columns.
type Dataset struct {
	Loading         bool
	Columns         []Column
	Records         map[string]*Record
	SortedRecordIDs []string
}

// New returns an empty, loaded dataset with the given columns.
func New(columns []Column) *Dataset {
	return &Dataset{
		Columns: columns,
		Records: make(map[string]*Record),
	}
}

// Loading returns a placeholder dataset reported as still loading.
func Loading() *Dataset {
	return &Dataset{Loading: true, Records: map[string]*Record{}}
}

// Append adds a record at the end of the sort order.
func (d *Dataset) Append(r *Record) error {
	if _, exists := d.Records[r.ID()]; exists {
		return ErrDuplicateID
	}
	d.Records[r.ID()] = r
	d.SortedRecordIDs = append(d.SortedRecordIDs, r.ID())
	return nil
}

// Len returns the number of records in sort order.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.SortedRecordIDs)
}

// Record looks up a record by id. It returns nil for an unknown id.
func (d *Dataset) Record(id string) *Record {
	if d == nil {
		return nil
	}
	return d.Records[id]
}

// Source loads a dataset from some backing store.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
	// Path is the file backing the source, used for change watching.
	Path() string
	Close() error
}
