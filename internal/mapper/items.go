// Package mapper turns host records into timeline items.
//
// A mapper reads a dataset and returns a fresh item list on every call. It
// never fails on bad input: records it cannot map are left out and reported
// at debug level.
package mapper

import (
	"github.com/rs/zerolog"

	"recordtimeline/internal/dataset"
	"recordtimeline/internal/vis"
)

// Mapper converts records into timeline items using a fixed Config.
type Mapper struct {
	cfg Config
	log zerolog.Logger
}

// New returns a mapper for cfg. Zero fields take their defaults. Skipped
// records are logged to log at debug level.
func New(cfg Config, log zerolog.Logger) *Mapper {
	return &Mapper{cfg: cfg.withDefaults(), log: log}
}

// Config returns the effective configuration.
func (m *Mapper) Config() Config { return m.cfg }

// BuildTimelineItems maps the records of ds, in sort order, to timeline items.
// Records without a start or a label are skipped, and so are records whose
// start or end cannot be read as a date. Ids run 1..n in emission order.
func (m *Mapper) BuildTimelineItems(ds *dataset.Dataset) []vis.Item {
	if ds == nil {
		return nil
	}
	items := make([]vis.Item, 0, ds.Len())
	for _, id := range ds.SortedRecordIDs {
		f, ok := ReadFields(ds.Record(id), m.cfg)
		if !ok {
			continue
		}
		item, err := m.item(len(items)+1, f)
		if err != nil {
			m.log.Debug().Err(err).Str("record", id).Msg("record skipped")
			continue
		}
		items = append(items, item)
	}
	return items
}

func (m *Mapper) item(id int, f Fields) (vis.Item, error) {
	start, err := m.parse(f.Start)
	if err != nil {
		return vis.Item{}, fieldError(m.cfg.StartField, err)
	}
	item := vis.Item{
		ID:      id,
		Content: f.Label,
		Start:   m.format(start),
		StartAt: start,
	}
	diff := -1
	if !blank(f.End) {
		end, err := m.parse(f.End)
		if err != nil {
			return vis.Item{}, fieldError(m.cfg.EndField, err)
		}
		item.End = m.format(end)
		item.EndAt = end
		diff = m.days(end, start)
	}
	item.Type = vis.Range
	if diff < 1 {
		item.Type = vis.Point
	}
	item.Title = item.Start
	if item.End != "" {
		item.Title = item.Start + m.cfg.TitleSeparator + item.End
	}
	return item, nil
}
