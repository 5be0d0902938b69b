package control

import (
	"bytes"
	"io"
)

// Element is a node of the mounting surface a host hands to a control. Each
// element carries its own content; writing an element writes its content
// followed by its children, depth first.
type Element struct {
	id       string
	width    int
	height   int
	content  []byte
	children []*Element
	parent   *Element

	listeners map[int]func(width, height int)
	nextID    int
}

// NewElement returns a detached element.
func NewElement(id string) *Element {
	return &Element{id: id}
}

// ID returns the element id.
func (e *Element) ID() string { return e.id }

// Width returns the allocated width in pixels.
func (e *Element) Width() int { return e.width }

// Height returns the allocated height in pixels.
func (e *Element) Height() int { return e.height }

// Parent returns the parent element, or nil when detached.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the direct children.
func (e *Element) Children() []*Element { return e.children }

// AppendChild attaches child as the last child of e. A child attached
// elsewhere is moved. The child inherits the parent's size.
func (e *Element) AppendChild(child *Element) {
	child.Remove()
	child.parent = e
	e.children = append(e.children, child)
	child.Resize(e.width, e.height)
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == e {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	e.parent = nil
}

// Find returns the first element in the subtree with the given id.
func (e *Element) Find(id string) *Element {
	if e.id == id {
		return e
	}
	for _, c := range e.children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// SetContent replaces the element's own content.
func (e *Element) SetContent(b []byte) {
	if b == nil {
		e.content = nil
		return
	}
	e.content = append(e.content[:0], b...)
}

// Content returns the element's own content.
func (e *Element) Content() []byte { return e.content }

// Resize sets the allocated size of e and its subtree, then notifies resize
// listeners. Listeners are not called when the size is unchanged.
func (e *Element) Resize(width, height int) {
	if e.width == width && e.height == height {
		return
	}
	e.width, e.height = width, height
	for _, c := range e.children {
		c.Resize(width, height)
	}
	for _, fn := range e.listeners {
		fn(width, height)
	}
}

// OnResize registers fn to run after e changes size.
func (e *Element) OnResize(fn func(width, height int)) (cancel func()) {
	if e.listeners == nil {
		e.listeners = make(map[int]func(int, int))
	}
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	return func() { delete(e.listeners, id) }
}

// WriteTo writes the subtree content to w.
func (e *Element) WriteTo(w io.Writer) (int64, error) {
	var total int64
	if len(e.content) > 0 {
		n, err := w.Write(e.content)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	for _, c := range e.children {
		n, err := c.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Bytes returns the subtree content.
func (e *Element) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = e.WriteTo(&buf)
	return buf.Bytes()
}
