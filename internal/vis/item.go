// Package vis draws timeline items as an SVG document.
//
// A Timeline is bound to a mount Surface. It draws as soon as it is created
// and redraws whenever the surface is resized or its items are replaced.
package vis

import (
	"errors"
	"fmt"
	"time"
)

// ErrDuplicateID is returned when an item id is already in the set.
var ErrDuplicateID = errors.New("vis: duplicate item id")

// Kind is how an item is drawn.
type Kind string

const (
	// Point is an instant: a marker with a label beside it.
	Point Kind = "point"
	// Range spans from Start to End and is drawn as a bar.
	Range Kind = "range"
)

// Item is one entry on the timeline. Start and End are the display strings;
// StartAt and EndAt position the item on the axis. A zero EndAt means the
// item has no end.
type Item struct {
	ID      int       `json:"id"`
	Content string    `json:"content"`
	Start   string    `json:"start"`
	End     string    `json:"end"`
	Type    Kind      `json:"type"`
	Title   string    `json:"title"`
	StartAt time.Time `json:"-"`
	EndAt   time.Time `json:"-"`
}

// last returns the latest instant covered by the item.
func (it Item) last() time.Time {
	if it.EndAt.After(it.StartAt) {
		return it.EndAt
	}
	return it.StartAt
}

// ItemSet is an ordered collection of items with unique ids.
type ItemSet struct {
	items []Item
	ids   map[int]struct{}
}

// NewItemSet returns a set holding items. Duplicate ids are an error.
func NewItemSet(items ...Item) (*ItemSet, error) {
	s := &ItemSet{ids: make(map[int]struct{})}
	if err := s.Add(items...); err != nil {
		return nil, err
	}
	return s, nil
}

// Add appends items to the set. Nothing is added when any id is taken.
func (s *ItemSet) Add(items ...Item) error {
	if s.ids == nil {
		s.ids = make(map[int]struct{})
	}
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		_, taken := s.ids[it.ID]
		_, twice := seen[it.ID]
		if taken || twice {
			return fmt.Errorf("%w: %d", ErrDuplicateID, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	for _, it := range items {
		s.ids[it.ID] = struct{}{}
		s.items = append(s.items, it)
	}
	return nil
}

// Replace swaps the contents of the set for items.
func (s *ItemSet) Replace(items []Item) error {
	next, err := NewItemSet(items...)
	if err != nil {
		return err
	}
	*s = *next
	return nil
}

// Clear removes every item.
func (s *ItemSet) Clear() {
	s.items = nil
	s.ids = make(map[int]struct{})
}

// Len returns the number of items.
func (s *ItemSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns a copy of the items in insertion order.
func (s *ItemSet) Items() []Item {
	if s == nil {
		return nil
	}
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}
