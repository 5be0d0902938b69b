package vis

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// placement is where an item ends up on the canvas.
type placement struct {
	item  Item
	x0    int // marker position, or left edge of a bar
	x1    int // right edge of a bar; equal to x0 for points
	left  int // horizontal extent including the label
	right int
	lane  int
}

// Render draws items onto a canvas width pixels wide. A width <= 0 uses
// opts.Width.
func Render(items []Item, width int, opts Options) []byte {
	opts = opts.withDefaults()
	if width <= 0 {
		width = opts.Width
	}

	placed, lanes := layout(items, width, opts)

	height := opts.Height
	if height <= 0 {
		height = opts.MarginTop + max(lanes, 1)*opts.LaneHeight + opts.MarginBottom
	}
	axisY := height - opts.MarginBottom + 10

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<defs>
<style>
.item-text { font-family: %s; font-size: %dpx; fill: %s; }
.axis-text { font-family: %s; font-size: %dpx; fill: %s; }
</style>
</defs>
`, width, height, opts.Background,
		opts.FontFamily, opts.FontSize, opts.TextColor,
		opts.FontFamily, opts.FontSize-2, opts.AxisColor))

	drawAxis(&svg, items, width, axisY, opts)

	for _, p := range placed {
		y := opts.MarginTop + p.lane*opts.LaneHeight + opts.LaneHeight/2
		drawItem(&svg, p, y, opts)
	}

	svg.WriteString("</svg>\n")
	return []byte(svg.String())
}

// bounds returns the earliest start and the latest end of items.
func bounds(items []Item) (first, last time.Time) {
	for i, it := range items {
		if i == 0 || it.StartAt.Before(first) {
			first = it.StartAt
		}
		if i == 0 || it.last().After(last) {
			last = it.last()
		}
	}
	return first, last
}

// scale maps instants between first and last onto the usable canvas width.
func scale(first, last time.Time, width int, opts Options) func(time.Time) int {
	startX := opts.MarginLeft + opts.HorizontalBuffer
	usable := width - opts.MarginLeft - opts.MarginRight - 2*opts.HorizontalBuffer
	if usable < 1 {
		usable = 1
	}
	span := last.Sub(first)
	return func(t time.Time) int {
		if span <= 0 {
			// Single instant goes in the middle of the usable area
			return startX + usable/2
		}
		proportion := float64(t.Sub(first)) / float64(span)
		return startX + int(proportion*float64(usable))
	}
}

// layout positions items on the time axis and stacks them into lanes so that
// no two labels overlap. It returns the placements in item order and the
// number of lanes used.
func layout(items []Item, width int, opts Options) ([]placement, int) {
	if len(items) == 0 {
		return nil, 0
	}
	first, last := bounds(items)
	xOf := scale(first, last, width, opts)

	placed := make([]placement, len(items))
	for i, it := range items {
		p := placement{item: it, x0: xOf(it.StartAt)}
		textWidth := estimateTextWidth(it.Content, opts.FontSize)
		if it.Type == Range && it.EndAt.After(it.StartAt) {
			p.x1 = max(xOf(it.EndAt), p.x0+2)
			p.left = p.x0
			p.right = max(p.x1, p.x0+textWidth+8)
		} else {
			p.x1 = p.x0
			p.left = p.x0 - opts.Marker.Size
			p.right = p.x0 + opts.Marker.Size + 4 + textWidth
		}
		placed[i] = p
	}

	if opts.AllowOverlap {
		return placed, 1
	}

	order := make([]int, len(placed))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return placed[order[a]].left < placed[order[b]].left
	})

	var laneRight []int
	for _, idx := range order {
		p := &placed[idx]
		lane := -1
		for j, r := range laneRight {
			if r+opts.LaneGap <= p.left {
				lane = j
				break
			}
		}
		if lane < 0 {
			lane = len(laneRight)
			laneRight = append(laneRight, 0)
		}
		laneRight[lane] = p.right
		p.lane = lane
	}
	return placed, len(laneRight)
}

func drawAxis(svg *strings.Builder, items []Item, width, y int, opts Options) {
	svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="%d"/>`,
		opts.MarginLeft, y, width-opts.MarginRight, y, opts.AxisColor, opts.LineWidth))
	svg.WriteString("\n")
	if len(items) == 0 {
		return
	}

	first, last := bounds(items)
	xOf := scale(first, last, width, opts)
	ticks := opts.AxisTicks
	if !last.After(first) {
		ticks = 1
	}
	for i := 0; i < ticks; i++ {
		t := first
		if ticks > 1 {
			t = first.Add(time.Duration(int64(last.Sub(first)) / int64(ticks-1) * int64(i)))
		}
		x := xOf(t)
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1"/>`,
			x, y-4, x, y+4, opts.AxisColor))
		svg.WriteString(fmt.Sprintf(`<text class="axis-text" x="%d" y="%d" text-anchor="middle">%s</text>`,
			x, y+18, escapeXML(t.Format(opts.AxisLayout))))
		svg.WriteString("\n")
	}
}

func drawItem(svg *strings.Builder, p placement, y int, opts Options) {
	svg.WriteString(fmt.Sprintf(`<g class="item %s" id="item-%d"><title>%s</title>`,
		p.item.Type, p.item.ID, escapeXML(p.item.Title)))

	if p.x1 > p.x0 {
		h := opts.LaneHeight - 8
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" rx="3" fill="%s" stroke="%s" stroke-width="1"/>`,
			p.x0, y-h/2, p.x1-p.x0, h, opts.RangeFill, opts.RangeLine))
		svg.WriteString(fmt.Sprintf(`<text class="item-text" x="%d" y="%d">%s</text>`,
			p.x0+4, y+opts.FontSize/3, escapeXML(p.item.Content)))
	} else {
		drawMarker(svg, p.x0, y, opts.Marker)
		svg.WriteString(fmt.Sprintf(`<text class="item-text" x="%d" y="%d">%s</text>`,
			p.x0+opts.Marker.Size+4, y+opts.FontSize/3, escapeXML(p.item.Content)))
	}
	svg.WriteString("</g>\n")
}

// drawMarker draws a point marker centred on (x, y).
//
// Supported shapes:
//   - "circle": circle with radius Size
//   - "square": square with side 2*Size
//   - "diamond": square rotated 45 degrees
//   - "triangle": upward-pointing triangle
//
// Unknown shapes fall back to a circle.
func drawMarker(svg *strings.Builder, x, y int, m Marker) {
	size := m.Size

	switch strings.ToLower(m.Shape) {
	case "square":
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="%s" stroke-width="%d"/>`,
			x-size, y-size, size*2, size*2, m.FillColor, m.StrokeColor, m.StrokeWidth))

	case "diamond":
		svg.WriteString(fmt.Sprintf(`<polygon points="%d,%d %d,%d %d,%d %d,%d" fill="%s" stroke="%s" stroke-width="%d"/>`,
			x, y-size, // top
			x+size, y, // right
			x, y+size, // bottom
			x-size, y, // left
			m.FillColor, m.StrokeColor, m.StrokeWidth))

	case "triangle":
		height := int(float64(size) * 1.5)
		svg.WriteString(fmt.Sprintf(`<polygon points="%d,%d %d,%d %d,%d" fill="%s" stroke="%s" stroke-width="%d"/>`,
			x, y-height, // top point
			x-size, y+height/2, // bottom left
			x+size, y+height/2, // bottom right
			m.FillColor, m.StrokeColor, m.StrokeWidth))

	default:
		svg.WriteString(fmt.Sprintf(`<circle cx="%d" cy="%d" r="%d" fill="%s" stroke="%s" stroke-width="%d"/>`,
			x, y, size, m.FillColor, m.StrokeColor, m.StrokeWidth))
	}
}

// estimateTextWidth estimates the width of text in pixels; an average glyph
// is about 0.6 of the font size.
func estimateTextWidth(text string, fontSize int) int {
	avgCharWidth := float64(fontSize) * 0.6
	return int(float64(len([]rune(text))) * avgCharWidth)
}

// escapeXML replaces the five XML special characters with entity references.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
