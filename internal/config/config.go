// Package config loads the YAML configuration for recordtimeline.
//
// A configuration file only needs to name the values it changes; everything
// else keeps the value from Default. Environment variables prefixed with
// RECORDTIMELINE_ override the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // dates.location must resolve without a system zoneinfo

	"gopkg.in/yaml.v3"

	"recordtimeline/internal/dataset"
	"recordtimeline/internal/mapper"
	"recordtimeline/internal/vis"
)

// Config represents the complete configuration. It maps directly to the YAML
// file and covers:
//   - which dataset to read and how
//   - which fields make up an item and the date layouts used to read them
//   - timeline appearance (font, colors, layout, markers)
//   - host behaviour (watching, scheduled refresh, logging)
type Config struct {
	Dataset  DatasetConfig  `yaml:"dataset"`
	Fields   FieldsConfig   `yaml:"fields"`
	Dates    DatesConfig    `yaml:"dates"`
	Font     FontConfig     `yaml:"font"`
	Colors   ColorsConfig   `yaml:"colors"`
	Layout   LayoutConfig   `yaml:"layout"`
	Timeline TimelineConfig `yaml:"timeline"`
	Marker   MarkerConfig   `yaml:"event_marker"`
	Host     HostConfig     `yaml:"host"`
	Log      LogConfig      `yaml:"log"`
}

type DatasetConfig struct {
	Driver        string   `yaml:"driver"`         // "csv" or "sqlite"; empty infers from the file extension
	Path          string   `yaml:"path"`           // Dataset file (CSV file or SQLite database)
	Query         string   `yaml:"query"`          // SQL query for the sqlite driver
	IDColumn      string   `yaml:"id_column"`      // Column holding record ids (case-insensitive)
	HiddenColumns []string `yaml:"hidden_columns"` // Columns reported as not displayed
	Delimiter     string   `yaml:"delimiter"`      // CSV field delimiter, default ","
}

type FieldsConfig struct {
	Start string `yaml:"start"` // Column with the start date
	End   string `yaml:"end"`   // Column with the optional end date
	Label string `yaml:"label"` // Column with the item label
}

type DatesConfig struct {
	InputLayout    string `yaml:"input_layout"`    // Go time layout of start/end values
	OutputLayout   string `yaml:"output_layout"`   // Go time layout of item start/end strings
	TitleSeparator string `yaml:"title_separator"` // Between start and end in the tooltip
	Granularity    string `yaml:"granularity"`     // "calendar" or "elapsed" day counting
	Location       string `yaml:"location"`        // IANA zone the dates are in
}

type FontConfig struct {
	Family string `yaml:"family"` // Font family for all text elements
	Size   int    `yaml:"size"`   // Base font size in pixels
}

type ColorsConfig struct {
	Background string `yaml:"background"` // SVG background color
	Axis       string `yaml:"axis"`       // Axis line and tick labels
	Text       string `yaml:"text"`       // Item labels
	RangeFill  string `yaml:"range_fill"` // Fill of range bars
	RangeLine  string `yaml:"range_line"` // Border of range bars
}

type LayoutConfig struct {
	Width        int `yaml:"width"`         // Container width in pixels
	Height       int `yaml:"height"`        // Container height in pixels; 0 fits the lanes
	MarginTop    int `yaml:"margin_top"`    // Top margin in pixels
	MarginBottom int `yaml:"margin_bottom"` // Bottom margin in pixels
	MarginLeft   int `yaml:"margin_left"`   // Left margin in pixels
	MarginRight  int `yaml:"margin_right"`  // Right margin in pixels
}

type TimelineConfig struct {
	LineWidth        int    `yaml:"line_width"`         // Width of the axis line in pixels
	HorizontalBuffer int    `yaml:"horizontal_buffer"`  // Space before the first and after the last item
	AvoidTextOverlap bool   `yaml:"avoid_text_overlap"` // Stack overlapping items into lanes
	LaneHeight       int    `yaml:"lane_height"`        // Height of one lane in pixels
	LaneGap          int    `yaml:"lane_gap"`           // Minimum horizontal gap inside a lane
	AxisTicks        int    `yaml:"axis_ticks"`         // Number of labelled axis ticks
	AxisLayout       string `yaml:"axis_layout"`        // Go time layout of tick labels
	RefreshOnUpdate  bool   `yaml:"refresh_on_update"`  // Replace widget items on every update after the first render
}

type MarkerConfig struct {
	Shape       string `yaml:"shape"`        // "circle", "triangle", "square" or "diamond"
	Size        int    `yaml:"size"`         // Marker size in pixels
	FillColor   string `yaml:"fill_color"`   // Marker fill color
	StrokeColor string `yaml:"stroke_color"` // Marker border color
	StrokeWidth int    `yaml:"stroke_width"` // Marker border width in pixels
}

type HostConfig struct {
	Watch             bool          `yaml:"watch"`               // Re-run updates when the dataset or config file changes
	RefreshSchedule   string        `yaml:"refresh_schedule"`    // Cron spec or descriptor ("@every 5m") for reloading the dataset
	Debounce          time.Duration `yaml:"debounce"`            // Quiet period after a file change before reloading
	MinUpdateInterval time.Duration `yaml:"min_update_interval"` // Minimum time between two reloads
	ReadAttempts      uint          `yaml:"read_attempts"`       // Attempts to read a dataset that is being written
	ReadDelay         time.Duration `yaml:"read_delay"`          // Delay between read attempts
}

type LogConfig struct {
	Level   string `yaml:"level"`   // trace, debug, info, warn or error
	Console bool   `yaml:"console"` // Human-readable output instead of JSON
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Dataset: DatasetConfig{
			Delimiter: ",",
		},
		Fields: FieldsConfig{
			Start: mapper.DefaultStartField,
			End:   mapper.DefaultEndField,
			Label: mapper.DefaultLabelField,
		},
		Dates: DatesConfig{
			InputLayout:    mapper.DefaultInputLayout,
			OutputLayout:   mapper.DefaultOutputLayout,
			TitleSeparator: mapper.DefaultTitleSeparator,
			Granularity:    string(mapper.Calendar),
			Location:       "UTC",
		},
		Font: FontConfig{
			Family: "Arial, sans-serif",
			Size:   12,
		},
		Colors: ColorsConfig{
			Background: "#ffffff",
			Axis:       "#333333",
			Text:       "#333333",
			RangeFill:  "#d5ddf6",
			RangeLine:  "#97b0f8",
		},
		Layout: LayoutConfig{
			Width:        1200,
			MarginTop:    30,
			MarginBottom: 50,
			MarginLeft:   40,
			MarginRight:  40,
		},
		Timeline: TimelineConfig{
			LineWidth:        2,
			HorizontalBuffer: 30,
			AvoidTextOverlap: true,
			LaneHeight:       28,
			LaneGap:          10,
			AxisTicks:        6,
			AxisLayout:       "2006-01-02",
		},
		Marker: MarkerConfig{
			Shape:       "circle",
			Size:        5,
			FillColor:   "#4285f4",
			StrokeColor: "#333333",
			StrokeWidth: 1,
		},
		Host: HostConfig{
			Debounce:          250 * time.Millisecond,
			MinUpdateInterval: time.Second,
			ReadAttempts:      4,
			ReadDelay:         200 * time.Millisecond,
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("RECORDTIMELINE_DATASET_PATH"); ok && v != "" {
		cfg.Dataset.Path = v
	}
	if v, ok := lookup("RECORDTIMELINE_DATASET_DRIVER"); ok && v != "" {
		cfg.Dataset.Driver = v
	}
	if v, ok := lookup("RECORDTIMELINE_LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup("RECORDTIMELINE_WATCH"); ok && v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid RECORDTIMELINE_WATCH: %w", err)
		}
		cfg.Host.Watch = watch
	}
	if v, ok := lookup("RECORDTIMELINE_WIDTH"); ok && v != "" {
		width, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RECORDTIMELINE_WIDTH: %w", err)
		}
		cfg.Layout.Width = width
	}
	return nil
}

// Validate reports configuration values that cannot work.
func (c Config) Validate() error {
	if c.Fields.Start == "" || c.Fields.Label == "" {
		return fmt.Errorf("invalid config: fields.start and fields.label are required")
	}
	if c.Dates.InputLayout == "" || c.Dates.OutputLayout == "" {
		return fmt.Errorf("invalid config: dates.input_layout and dates.output_layout are required")
	}
	switch mapper.Granularity(strings.ToLower(c.Dates.Granularity)) {
	case mapper.Calendar, mapper.Elapsed, "":
	default:
		return fmt.Errorf("invalid config: dates.granularity %q", c.Dates.Granularity)
	}
	if _, err := time.LoadLocation(c.Dates.Location); err != nil {
		return fmt.Errorf("invalid config: dates.location: %w", err)
	}
	if c.Layout.Width < 0 || c.Layout.Height < 0 {
		return fmt.Errorf("invalid config: layout size must not be negative")
	}
	if len([]rune(c.Dataset.Delimiter)) > 1 {
		return fmt.Errorf("invalid config: dataset.delimiter must be a single character")
	}
	return nil
}

// MapperConfig returns the record mapper configuration.
func (c Config) MapperConfig() mapper.Config {
	loc, err := time.LoadLocation(c.Dates.Location)
	if err != nil {
		loc = time.UTC
	}
	return mapper.Config{
		StartField:     c.Fields.Start,
		EndField:       c.Fields.End,
		LabelField:     c.Fields.Label,
		InputLayout:    c.Dates.InputLayout,
		OutputLayout:   c.Dates.OutputLayout,
		TitleSeparator: c.Dates.TitleSeparator,
		Granularity:    mapper.Granularity(strings.ToLower(c.Dates.Granularity)),
		Location:       loc,
	}
}

// WidgetOptions returns the timeline widget options. The container size wins
// over Width when the container reports one.
func (c Config) WidgetOptions() vis.Options {
	return vis.Options{
		Width:            c.Layout.Width,
		MarginTop:        c.Layout.MarginTop,
		MarginBottom:     c.Layout.MarginBottom,
		MarginLeft:       c.Layout.MarginLeft,
		MarginRight:      c.Layout.MarginRight,
		HorizontalBuffer: c.Timeline.HorizontalBuffer,
		FontFamily:       c.Font.Family,
		FontSize:         c.Font.Size,
		Background:       c.Colors.Background,
		AxisColor:        c.Colors.Axis,
		TextColor:        c.Colors.Text,
		RangeFill:        c.Colors.RangeFill,
		RangeLine:        c.Colors.RangeLine,
		Marker: vis.Marker{
			Shape:       c.Marker.Shape,
			Size:        c.Marker.Size,
			FillColor:   c.Marker.FillColor,
			StrokeColor: c.Marker.StrokeColor,
			StrokeWidth: c.Marker.StrokeWidth,
		},
		LineWidth:    c.Timeline.LineWidth,
		LaneHeight:   c.Timeline.LaneHeight,
		LaneGap:      c.Timeline.LaneGap,
		AxisTicks:    c.Timeline.AxisTicks,
		AxisLayout:   c.Timeline.AxisLayout,
		AllowOverlap: !c.Timeline.AvoidTextOverlap,
	}
}

// DatasetSource returns the dataset source configuration.
func (c Config) DatasetSource() dataset.Config {
	var comma rune
	if r := []rune(c.Dataset.Delimiter); len(r) == 1 {
		comma = r[0]
	}
	return dataset.Config{
		Driver:   c.Dataset.Driver,
		Path:     c.Dataset.Path,
		Query:    c.Dataset.Query,
		IDColumn: c.Dataset.IDColumn,
		Hidden:   c.Dataset.HiddenColumns,
		Comma:    comma,
	}
}
