package mapper

import "time"

// Granularity selects how DayDifference counts days.
type Granularity string

const (
	// Calendar counts calendar-date boundaries crossed between two instants.
	Calendar Granularity = "calendar"
	// Elapsed counts whole 24 hour periods, truncated toward zero.
	Elapsed Granularity = "elapsed"
)

// Default field names and layouts for scheduled activities.
const (
	DefaultStartField     = "scheduledstart"
	DefaultEndField       = "scheduledend"
	DefaultLabelField     = "subject"
	DefaultInputLayout    = "2/01/2006 3:04 PM"
	DefaultOutputLayout   = "2006-01-02 3:04 PM"
	DefaultTitleSeparator = "  -  "
)

// Config names the fields a record is read through and the date layouts used
// to parse and format them.
type Config struct {
	StartField     string
	EndField       string
	LabelField     string
	InputLayout    string
	OutputLayout   string
	TitleSeparator string
	Granularity    Granularity
	Location       *time.Location
}

// DefaultConfig returns the configuration for scheduled activities.
func DefaultConfig() Config {
	return Config{
		StartField:     DefaultStartField,
		EndField:       DefaultEndField,
		LabelField:     DefaultLabelField,
		InputLayout:    DefaultInputLayout,
		OutputLayout:   DefaultOutputLayout,
		TitleSeparator: DefaultTitleSeparator,
		Granularity:    Calendar,
		Location:       time.UTC,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StartField == "" {
		c.StartField = d.StartField
	}
	if c.EndField == "" {
		c.EndField = d.EndField
	}
	if c.LabelField == "" {
		c.LabelField = d.LabelField
	}
	if c.InputLayout == "" {
		c.InputLayout = d.InputLayout
	}
	if c.OutputLayout == "" {
		c.OutputLayout = d.OutputLayout
	}
	if c.TitleSeparator == "" {
		c.TitleSeparator = d.TitleSeparator
	}
	if c.Granularity == "" {
		c.Granularity = d.Granularity
	}
	if c.Location == nil {
		c.Location = d.Location
	}
	return c
}
