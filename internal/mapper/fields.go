package mapper

import "recordtimeline/internal/dataset"

// ValueReader is the part of a record the mapper reads.
type ValueReader interface {
	FormattedValue(name string) (string, bool)
}

// Fields are the three values of a record that make up a timeline item.
// Values are kept as the record holds them. A blank End means the record
// has no end date.
type Fields struct {
	Start string
	End   string
	Label string
}

// ReadFields reads the start, end and label of rec through the configured
// field names. It reports false when the start or the label is null or empty.
func ReadFields(rec ValueReader, cfg Config) (Fields, bool) {
	if rec == nil {
		return Fields{}, false
	}
	cfg = cfg.withDefaults()

	var f Fields
	f.Start = lookup(rec, cfg.StartField)
	f.Label = lookup(rec, cfg.LabelField)
	if f.Start == "" || f.Label == "" {
		return Fields{}, false
	}
	f.End = lookup(rec, cfg.EndField)
	return f, true
}

func lookup(rec ValueReader, name string) string {
	v, ok := rec.FormattedValue(name)
	if !ok {
		return ""
	}
	return v
}

var _ ValueReader = (*dataset.Record)(nil)
