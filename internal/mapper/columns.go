package mapper

import (
	"sort"

	"recordtimeline/internal/dataset"
)

// SelectVisibleColumns returns the displayed columns sorted by their order.
// Supplementary columns (negative order) are dropped. Equal orders keep their
// input order. The input slice is not modified.
func SelectVisibleColumns(columns []dataset.Column) []dataset.Column {
	visible := make([]dataset.Column, 0, len(columns))
	for _, col := range columns {
		if col.Order >= 0 {
			visible = append(visible, col)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Order < visible[j].Order
	})
	return visible
}
