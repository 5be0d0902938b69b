package control

import (
	"fmt"

	"github.com/rs/zerolog"

	"recordtimeline/internal/mapper"
	"recordtimeline/internal/vis"
)

// VisualisationID is the id of the element the widget is mounted on.
const VisualisationID = "visualisation"

// State is the widget lifecycle of a Timeline.
type State int

const (
	// Uninitialized means no widget has been built yet.
	Uninitialized State = iota
	// Rendered means the widget exists. There is no way back.
	Rendered
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Rendered:
		return "rendered"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// TimelineOptions configures a Timeline view.
type TimelineOptions struct {
	Mapper mapper.Config
	Widget vis.Options
	// RefreshOnUpdate replaces the widget items on every update once it is
	// rendered. When false the widget keeps the items it was built with.
	RefreshOnUpdate bool
	Logger          zerolog.Logger
}

// Timeline shows the host dataset as a timeline widget. The widget is built
// on the first update that has records and reused for the view's lifetime.
type Timeline struct {
	opts   TimelineOptions
	mapper *mapper.Mapper
	log    zerolog.Logger

	main   *Element
	visu   *Element
	notify func()

	state  State
	widget *vis.Timeline
	items  []vis.Item
}

// NewTimeline returns an uninitialized timeline view.
func NewTimeline(opts TimelineOptions) *Timeline {
	log := opts.Logger.With().Str("control", "timeline").Logger()
	return &Timeline{
		opts:   opts,
		mapper: mapper.New(opts.Mapper, log),
		log:    log,
	}
}

// Init creates the visualisation element under container and asks the host
// to track container resizes. No widget is built here.
func (t *Timeline) Init(ctx *Context, notify func(), state map[string]string, container *Element) error {
	if container == nil {
		return fmt.Errorf("control: nil container")
	}
	if ctx != nil && ctx.Mode != nil {
		ctx.Mode.TrackContainerResize(true)
	}
	t.notify = notify

	t.main = NewElement("timeline-main")
	t.visu = NewElement(VisualisationID)
	t.main.AppendChild(t.visu)
	container.AppendChild(t.main)

	t.log.Debug().Int("width", container.Width()).Msg("control initialized")
	return nil
}

// UpdateView rebuilds the item list from ctx.Dataset. It does nothing while
// the dataset is loading or when no column is visible. The widget is built
// once, with the first item list of a non-empty dataset.
func (t *Timeline) UpdateView(ctx *Context) error {
	if t.visu == nil {
		return ErrNotInitialized
	}
	if ctx == nil || ctx.Dataset == nil || ctx.Dataset.Loading {
		t.log.Debug().Msg("dataset loading; skipping update")
		return nil
	}

	columns := mapper.SelectVisibleColumns(ctx.Dataset.Columns)
	if len(columns) == 0 {
		t.log.Debug().Msg("no visible columns; skipping update")
		return nil
	}

	ds := ctx.Dataset
	items := t.mapper.BuildTimelineItems(ds)
	t.items = items
	t.log.Debug().
		Int("records", ds.Len()).
		Int("items", len(items)).
		Int("skipped", ds.Len()-len(items)).
		Msg("timeline items built")

	if ds.Len() == 0 {
		return nil
	}

	switch t.state {
	case Uninitialized:
		set, err := vis.NewItemSet(items...)
		if err != nil {
			return err
		}
		t.widget = vis.New(t.visu, set, t.opts.Widget)
		t.state = Rendered
		t.log.Info().Int("items", set.Len()).Msg("timeline widget created")
	case Rendered:
		if !t.opts.RefreshOnUpdate {
			t.log.Debug().Msg("widget already rendered; keeping its items")
			return nil
		}
		if err := t.widget.SetItems(items); err != nil {
			return err
		}
		t.log.Debug().Int("items", len(items)).Msg("timeline widget refreshed")
	}
	return nil
}

// Outputs returns no values; the timeline binds no outputs.
func (t *Timeline) Outputs() Outputs { return Outputs{} }

// Destroy tears the widget down and detaches the view from its container.
func (t *Timeline) Destroy() {
	if t.widget != nil {
		t.widget.Destroy()
		t.widget = nil
	}
	if t.main != nil {
		t.main.Remove()
	}
}

// State returns the widget lifecycle state.
func (t *Timeline) State() State { return t.state }

// Widget returns the widget, or nil before the first render.
func (t *Timeline) Widget() *vis.Timeline { return t.widget }

// Items returns the item list computed by the latest update.
func (t *Timeline) Items() []vis.Item { return t.items }
