package control

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"recordtimeline/internal/mapper"
	"recordtimeline/internal/vis"
)

// ItemList writes the mapped timeline items as a JSON array instead of
// drawing them. Unlike Timeline it rewrites its output on every update.
type ItemList struct {
	mapper *mapper.Mapper
	log    zerolog.Logger
	out    *Element
}

// NewItemList returns an uninitialized item list view.
func NewItemList(cfg mapper.Config, log zerolog.Logger) *ItemList {
	log = log.With().Str("control", "itemlist").Logger()
	return &ItemList{
		mapper: mapper.New(cfg, log),
		log:    log,
	}
}

// Init creates the output element under container.
func (l *ItemList) Init(_ *Context, _ func(), _ map[string]string, container *Element) error {
	if container == nil {
		return fmt.Errorf("control: nil container")
	}
	l.out = NewElement("items")
	container.AppendChild(l.out)
	return nil
}

// UpdateView replaces the output with the items mapped from ctx.Dataset.
func (l *ItemList) UpdateView(ctx *Context) error {
	if l.out == nil {
		return ErrNotInitialized
	}
	if ctx == nil || ctx.Dataset == nil || ctx.Dataset.Loading {
		return nil
	}
	if len(mapper.SelectVisibleColumns(ctx.Dataset.Columns)) == 0 {
		return nil
	}
	items := l.mapper.BuildTimelineItems(ctx.Dataset)
	if items == nil {
		items = []vis.Item{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	l.out.SetContent(append(b, '\n'))
	l.log.Debug().Int("items", len(items)).Msg("item list written")
	return nil
}

// Outputs returns no values; the item list binds no outputs.
func (l *ItemList) Outputs() Outputs { return Outputs{} }

// Destroy detaches the output element from its container.
func (l *ItemList) Destroy() {
	if l.out != nil {
		l.out.Remove()
	}
}
