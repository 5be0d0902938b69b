package vis

// Options controls the appearance of a Timeline. Zero fields take the value
// from DefaultOptions.
type Options struct {
	Width  int // Canvas width in pixels when the mount reports none
	Height int // Canvas height in pixels; 0 sizes the canvas to fit the lanes

	MarginTop        int
	MarginBottom     int
	MarginLeft       int
	MarginRight      int
	HorizontalBuffer int // Space before the first and after the last item

	FontFamily string
	FontSize   int

	Background string
	AxisColor  string
	TextColor  string
	RangeFill  string
	RangeLine  string

	Marker Marker

	LineWidth    int    // Width of the axis line
	LaneHeight   int    // Height of one stacking lane
	LaneGap      int    // Minimum horizontal gap between items in a lane
	AxisTicks    int    // Number of labelled ticks on the axis
	AxisLayout   string // Go time layout for tick labels
	AllowOverlap bool   // Put every item in one lane
}

// Marker describes how point items are drawn.
type Marker struct {
	Shape       string // "circle", "square", "diamond" or "triangle"
	Size        int
	FillColor   string
	StrokeColor string
	StrokeWidth int
}

// DefaultOptions returns the default look: a 1200px wide canvas with 12px
// Arial text, blue circle markers and six axis ticks.
func DefaultOptions() Options {
	return Options{
		Width:            1200,
		MarginTop:        30,
		MarginBottom:     50,
		MarginLeft:       40,
		MarginRight:      40,
		HorizontalBuffer: 30,
		FontFamily:       "Arial, sans-serif",
		FontSize:         12,
		Background:       "#ffffff",
		AxisColor:        "#333333",
		TextColor:        "#333333",
		RangeFill:        "#d5ddf6",
		RangeLine:        "#97b0f8",
		Marker: Marker{
			Shape:       "circle",
			Size:        5,
			FillColor:   "#4285f4",
			StrokeColor: "#333333",
			StrokeWidth: 1,
		},
		LineWidth:  2,
		LaneHeight: 28,
		LaneGap:    10,
		AxisTicks:  6,
		AxisLayout: "2006-01-02",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	setInt := func(v *int, def int) {
		if *v == 0 {
			*v = def
		}
	}
	setStr := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	setInt(&o.Width, d.Width)
	setInt(&o.MarginTop, d.MarginTop)
	setInt(&o.MarginBottom, d.MarginBottom)
	setInt(&o.MarginLeft, d.MarginLeft)
	setInt(&o.MarginRight, d.MarginRight)
	setInt(&o.HorizontalBuffer, d.HorizontalBuffer)
	setStr(&o.FontFamily, d.FontFamily)
	setInt(&o.FontSize, d.FontSize)
	setStr(&o.Background, d.Background)
	setStr(&o.AxisColor, d.AxisColor)
	setStr(&o.TextColor, d.TextColor)
	setStr(&o.RangeFill, d.RangeFill)
	setStr(&o.RangeLine, d.RangeLine)
	setStr(&o.Marker.Shape, d.Marker.Shape)
	setInt(&o.Marker.Size, d.Marker.Size)
	setStr(&o.Marker.FillColor, d.Marker.FillColor)
	setStr(&o.Marker.StrokeColor, d.Marker.StrokeColor)
	setInt(&o.Marker.StrokeWidth, d.Marker.StrokeWidth)
	setInt(&o.LineWidth, d.LineWidth)
	setInt(&o.LaneHeight, d.LaneHeight)
	setInt(&o.LaneGap, d.LaneGap)
	setInt(&o.AxisTicks, d.AxisTicks)
	setStr(&o.AxisLayout, d.AxisLayout)
	return o
}
