package vis

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	width, height int
	content       []byte
	listeners     map[int]func(int, int)
	next          int
}

func (f *fakeSurface) Width() int          { return f.width }
func (f *fakeSurface) Height() int         { return f.height }
func (f *fakeSurface) SetContent(b []byte) { f.content = b }
func (f *fakeSurface) OnResize(fn func(int, int)) func() {
	if f.listeners == nil {
		f.listeners = map[int]func(int, int){}
	}
	id := f.next
	f.next++
	f.listeners[id] = fn
	return func() { delete(f.listeners, id) }
}

func (f *fakeSurface) resize(w, h int) {
	f.width, f.height = w, h
	for _, fn := range f.listeners {
		fn(w, h)
	}
}

func at(day, hour int) time.Time {
	return time.Date(2024, time.June, day, hour, 0, 0, 0, time.UTC)
}

func sampleItems() []Item {
	return []Item{
		{ID: 1, Content: "Kickoff", Type: Point, Title: "kick", StartAt: at(1, 10), EndAt: at(1, 11)},
		{ID: 2, Content: "Site visit", Type: Range, Title: "visit", StartAt: at(1, 10), EndAt: at(3, 9)},
		{ID: 3, Content: "Call <urgent>", Type: Point, Title: "a & b", StartAt: at(5, 16)},
	}
}

func TestItemSet_AddRejectsDuplicates(t *testing.T) {
	s, err := NewItemSet(sampleItems()...)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	err = s.Add(Item{ID: 4}, Item{ID: 2})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 3, s.Len(), "failed add must not partially apply")

	err = s.Add(Item{ID: 7}, Item{ID: 7})
	assert.ErrorIs(t, err, ErrDuplicateID)

	require.NoError(t, s.Add(Item{ID: 4}))
	assert.Equal(t, 4, s.Len())

	got := s.Items()
	got[0].Content = "changed"
	assert.Equal(t, "Kickoff", s.Items()[0].Content)

	s.Clear()
	assert.Equal(t, 0, s.Len())
	require.NoError(t, s.Add(Item{ID: 1}))
}

func TestRender_Items(t *testing.T) {
	out := string(Render(sampleItems(), 800, Options{}))

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0"`))
	assert.Contains(t, out, `width="800"`)
	assert.Contains(t, out, `<g class="item point" id="item-1">`)
	assert.Contains(t, out, `<g class="item range" id="item-2">`)
	assert.Contains(t, out, `<title>a &amp; b</title>`)
	assert.Contains(t, out, `Call &lt;urgent&gt;`)
	assert.Contains(t, out, `<rect x=`)
	assert.Contains(t, out, `2024-06-01`)
	assert.Equal(t, 2, strings.Count(out, "<circle"))
}

func TestRender_EmptyAndSingle(t *testing.T) {
	out := string(Render(nil, 0, Options{}))
	assert.Contains(t, out, `width="1200"`)
	assert.NotContains(t, out, "<g class=")

	single := []Item{{ID: 1, Content: "Only", Type: Point, StartAt: at(2, 9)}}
	out = string(Render(single, 400, Options{Marker: Marker{Shape: "diamond"}}))
	assert.Contains(t, out, "<polygon")
	assert.Equal(t, 1, strings.Count(out, `class="axis-text"`))
}

func TestLayout_StacksOverlappingItems(t *testing.T) {
	items := sampleItems()[:2] // same start instant
	placed, lanes := layout(items, 800, DefaultOptions())
	require.Len(t, placed, 2)
	assert.Equal(t, 2, lanes)
	assert.NotEqual(t, placed[0].lane, placed[1].lane)

	opts := DefaultOptions()
	opts.AllowOverlap = true
	placed, lanes = layout(items, 800, opts)
	assert.Equal(t, 1, lanes)
	assert.Equal(t, placed[0].lane, placed[1].lane)
}

func TestLayout_SeparatedItemsShareLane(t *testing.T) {
	items := []Item{
		{ID: 1, Content: "a", Type: Point, StartAt: at(1, 0)},
		{ID: 2, Content: "b", Type: Point, StartAt: at(30, 0)},
	}
	placed, lanes := layout(items, 1200, DefaultOptions())
	assert.Equal(t, 1, lanes)
	assert.Less(t, placed[0].x0, placed[1].x0)
}

func TestTimeline_DrawsAndRedrawsOnResize(t *testing.T) {
	mount := &fakeSurface{width: 600}
	set, err := NewItemSet(sampleItems()...)
	require.NoError(t, err)

	tl := New(mount, set, Options{})
	assert.Equal(t, 1, tl.Draws())
	assert.Contains(t, string(mount.content), `width="600"`)

	mount.resize(900, 0)
	assert.Equal(t, 2, tl.Draws())
	assert.Contains(t, string(mount.content), `width="900"`)

	require.NoError(t, tl.SetItems([]Item{{ID: 9, Content: "Fresh", Type: Point, StartAt: at(9, 9)}}))
	assert.Equal(t, 1, tl.Items().Len())
	assert.Contains(t, string(mount.content), "Fresh")

	tl.Destroy()
	assert.Nil(t, mount.content)
	assert.Empty(t, mount.listeners)
	mount.resize(100, 0)
	assert.Equal(t, 3, tl.Draws())
}
