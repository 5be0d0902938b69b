package mapper

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDateFormat is returned when a value does not match the input layout.
var ErrDateFormat = errors.New("mapper: value does not match date layout")

const day = 24 * time.Hour

// relaxed lets the numeric month, day and 12-hour fields of a layout take one
// or two digits.
var relaxed = strings.NewReplacer("01", "1", "02", "2", "03", "3")

// parse reads value with the input layout. Surrounding space is ignored, an
// am/pm marker may be lower case, and numeric fields need no zero padding.
func (m *Mapper) parse(value string) (time.Time, error) {
	v := normalizeMarker(strings.TrimSpace(value))
	t, err := time.ParseInLocation(m.cfg.InputLayout, v, m.cfg.Location)
	if err == nil {
		return t, nil
	}
	if layout := relaxed.Replace(m.cfg.InputLayout); layout != m.cfg.InputLayout {
		if t, rerr := time.ParseInLocation(layout, v, m.cfg.Location); rerr == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q: %v", ErrDateFormat, value, err)
}

// normalizeMarker upper-cases a trailing am/pm marker.
func normalizeMarker(v string) string {
	i := strings.LastIndexByte(v, ' ')
	if i < 0 {
		return v
	}
	switch marker := v[i+1:]; {
	case strings.EqualFold(marker, "am"), strings.EqualFold(marker, "pm"):
		return v[:i+1] + strings.ToUpper(marker)
	}
	return v
}

func (m *Mapper) format(t time.Time) string {
	return t.In(m.cfg.Location).Format(m.cfg.OutputLayout)
}

func fieldError(field string, err error) error {
	return fmt.Errorf("%s: %w", field, err)
}

func blank(v string) bool { return strings.TrimSpace(v) == "" }

// DayDifference returns the whole-day difference end - start of two values in
// the input layout, or -1 when either is empty.
func (m *Mapper) DayDifference(end, start string) (int, error) {
	if blank(end) || blank(start) {
		return -1, nil
	}
	e, err := m.parse(end)
	if err != nil {
		return 0, err
	}
	s, err := m.parse(start)
	if err != nil {
		return 0, err
	}
	return m.days(e, s), nil
}

func (m *Mapper) days(end, start time.Time) int {
	if m.cfg.Granularity == Elapsed {
		return int(end.Sub(start) / day)
	}
	ey, em, ed := end.In(m.cfg.Location).Date()
	sy, sm, sd := start.In(m.cfg.Location).Date()
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s) / day)
}
