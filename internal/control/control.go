// Package control defines the lifecycle a host drives a view through and the
// timeline view that implements it.
//
// A host calls Init once with a container element, UpdateView whenever the
// data or the container changes, Outputs before it propagates bound values,
// and Destroy once before removing the view. Calls are never concurrent.
package control

import (
	"errors"

	"recordtimeline/internal/dataset"
)

// ErrNotInitialized is returned by UpdateView before Init.
var ErrNotInitialized = errors.New("control: not initialized")

// Outputs are the bound values a control reports back to its host.
type Outputs map[string]any

// Mode is the part of the host a control can configure.
type Mode interface {
	// TrackContainerResize asks the host to report container size changes.
	TrackContainerResize(enabled bool)
}

// Context is the state a host passes to every lifecycle call.
type Context struct {
	Dataset *dataset.Dataset
	Mode    Mode
}

// Control is a view driven by a host.
type Control interface {
	// Init attaches the view to container. notify tells the host that
	// Outputs changed. state is the session state persisted by the host.
	Init(ctx *Context, notify func(), state map[string]string, container *Element) error
	// UpdateView brings the view in line with ctx.
	UpdateView(ctx *Context) error
	// Outputs returns the bound values; called before the host persists them.
	Outputs() Outputs
	// Destroy releases the view.
	Destroy()
}
