package vis

// Surface is the element a Timeline draws into.
type Surface interface {
	Width() int
	Height() int
	SetContent(b []byte)
	// OnResize registers fn to run after the surface changes size. The
	// returned func removes the registration.
	OnResize(fn func(width, height int)) (cancel func())
}

// Timeline draws an item set into a mount surface.
type Timeline struct {
	mount  Surface
	items  *ItemSet
	opts   Options
	cancel func()
	draws  int
}

// New creates a timeline on mount showing items and draws it. The timeline
// keeps a reference to items; later changes are picked up on the next draw.
func New(mount Surface, items *ItemSet, opts Options) *Timeline {
	if items == nil {
		items = &ItemSet{}
	}
	t := &Timeline{mount: mount, items: items, opts: opts}
	t.cancel = mount.OnResize(func(int, int) { t.Redraw() })
	t.Redraw()
	return t
}

// Items returns the set the timeline is showing.
func (t *Timeline) Items() *ItemSet { return t.items }

// SetItems replaces the items and redraws.
func (t *Timeline) SetItems(items []Item) error {
	if err := t.items.Replace(items); err != nil {
		return err
	}
	t.Redraw()
	return nil
}

// Redraw renders the current items at the mount's current width.
func (t *Timeline) Redraw() {
	if t.mount == nil {
		return
	}
	opts := t.opts
	if h := t.mount.Height(); h > 0 && opts.Height == 0 {
		opts.Height = h
	}
	t.mount.SetContent(Render(t.items.Items(), t.mount.Width(), opts))
	t.draws++
}

// Draws returns how many times the timeline has been drawn.
func (t *Timeline) Draws() int { return t.draws }

// Destroy stops listening for resizes and clears the mount.
func (t *Timeline) Destroy() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.mount != nil {
		t.mount.SetContent(nil)
		t.mount = nil
	}
}
